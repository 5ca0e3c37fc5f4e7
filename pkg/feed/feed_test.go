package feed

import (
	"reflect"
	"testing"
	"time"

	"github.com/cotovicz/dasein/pkg/model"
)

func testCreations() []model.Creation {
	return []model.Creation{
		{ID: "1", Title: "Morning Dunes", Body: "sand everywhere", AuthorName: "Alice", Tags: []string{"travel", "photo"}},
		{ID: "2", Title: "Recipe", Body: "flour and water", AuthorName: "Bob", Tags: []string{"food"}},
		{ID: "3", Title: "City lights", Body: "night walk in the DUNES district", AuthorName: "Carol", Tags: nil},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		selected map[string]struct{}
		wantIDs  []string
	}{
		{
			name:    "blank query and empty selection pass everything",
			wantIDs: []string{"1", "2", "3"},
		},
		{
			name:    "text matches title case-insensitively",
			query:   "dunes",
			wantIDs: []string{"1", "3"},
		},
		{
			name:    "text matches author name",
			query:   "bob",
			wantIDs: []string{"2"},
		},
		{
			name:    "surrounding whitespace is ignored",
			query:   "  recipe  ",
			wantIDs: []string{"2"},
		},
		{
			name:     "single tag",
			selected: map[string]struct{}{"food": {}},
			wantIDs:  []string{"2"},
		},
		{
			name:     "multiple tags use OR semantics",
			selected: map[string]struct{}{"food": {}, "photo": {}},
			wantIDs:  []string{"1", "2"},
		},
		{
			name:     "untagged posts fail any tag selection",
			selected: map[string]struct{}{"travel": {}},
			wantIDs:  []string{"1"},
		},
		{
			name:     "text and tags combine with AND",
			query:    "dunes",
			selected: map[string]struct{}{"travel": {}},
			wantIDs:  []string{"1"},
		},
		{
			name:    "no match yields empty",
			query:   "zzz",
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(testCreations(), tt.query, tt.selected)
			gotIDs := make([]string, 0, len(got))
			for _, c := range got {
				gotIDs = append(gotIDs, c.ID)
			}
			if !reflect.DeepEqual(gotIDs, tt.wantIDs) {
				t.Errorf("Filter() ids = %v, want %v", gotIDs, tt.wantIDs)
			}
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	selected := map[string]struct{}{"travel": {}, "food": {}}
	once := Filter(testCreations(), "a", selected)
	twice := Filter(once, "a", selected)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering a filtered list changed it: %v vs %v", once, twice)
	}
}

func TestComposer_DerivesOnInputChange(t *testing.T) {
	c := NewComposer()
	defer c.Close()

	c.SetBase(testCreations())
	waitFor(t, c, 3)

	c.SetQuery("dunes")
	got := waitFor(t, c, 2)
	if got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("filtered ids = %s, %s", got[0].ID, got[1].ID)
	}

	c.ToggleTag("travel")
	got = waitFor(t, c, 1)
	if got[0].ID != "1" {
		t.Errorf("filtered id = %s", got[0].ID)
	}

	// Toggling the same tag again deselects it.
	c.ToggleTag("travel")
	waitFor(t, c, 2)

	if q := c.Query(); q != "dunes" {
		t.Errorf("Query() = %q", q)
	}
}

func TestComposer_SnapshotTracksLatest(t *testing.T) {
	c := NewComposer()
	defer c.Close()

	c.SetBase(testCreations())
	waitFor(t, c, 3)

	if got := c.Snapshot(); len(got) != 3 {
		t.Errorf("Snapshot() has %d entries", len(got))
	}
}

func TestComposer_CloseStopsUpdates(t *testing.T) {
	c := NewComposer()
	c.SetBase(testCreations())
	waitFor(t, c, 3)
	c.Close()

	select {
	case _, ok := <-c.Updates():
		if ok {
			t.Error("received an update after Close")
		}
	case <-time.After(time.Second):
		t.Error("updates channel not closed")
	}
}

// waitFor reads updates until one has want entries. Coalescing may skip
// intermediate results, so counting is the only stable observation.
func waitFor(t *testing.T, c *Composer, want int) []model.Creation {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got, ok := <-c.Updates():
			if !ok {
				t.Fatal("updates channel closed while waiting")
			}
			if len(got) == want {
				return got
			}
		case <-deadline:
			t.Fatalf("no update with %d entries", want)
		}
	}
}
