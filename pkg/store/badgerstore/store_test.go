package badgerstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cotovicz/dasein/pkg/document"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(InMemoryConfig())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Add(ctx, "posts", map[string]any{"title": "hello", "n": int64(1)})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id == "" {
		t.Fatal("Add returned an empty id")
	}

	doc, err := s.Get(ctx, "posts", id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Fields["title"] != "hello" || doc.Fields["n"] != int64(1) {
		t.Errorf("fields = %v", doc.Fields)
	}

	if err := s.Update(ctx, "posts", id, map[string]any{"title": "changed"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	doc, _ = s.Get(ctx, "posts", id)
	if doc.Fields["title"] != "changed" || doc.Fields["n"] != int64(1) {
		t.Errorf("update did not merge: %v", doc.Fields)
	}

	if err := s.Delete(ctx, "posts", id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "posts", id); !errors.Is(err, document.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	// Deleting an absent document is not an error.
	if err := s.Delete(ctx, "posts", "missing"); err != nil {
		t.Errorf("Delete of absent doc = %v", err)
	}
}

func TestStore_UpdateMissingDocument(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.Update(ctx, "posts", "missing", map[string]any{"title": "x"})
	if !errors.Is(err, document.ErrNotFound) {
		t.Errorf("Update of missing doc = %v, want ErrNotFound", err)
	}
}

func TestStore_NewIDsAreOrdered(t *testing.T) {
	s := openTestStore(t)

	prev := s.NewID()
	for range 100 {
		next := s.NewID()
		if next <= prev {
			t.Fatalf("ids not strictly increasing: %s then %s", prev, next)
		}
		prev = next
	}
}

func TestStore_GetByIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id1, _ := s.Add(ctx, "posts", map[string]any{"title": "a"})
	id2, _ := s.Add(ctx, "posts", map[string]any{"title": "b"})

	docs, err := s.GetByIDs(ctx, "posts", []string{id1, "missing", id2})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("got %d docs, want 2 (missing ids dropped)", len(docs))
	}

	tooMany := make([]string, document.MaxIDSetSize+1)
	if _, err := s.GetByIDs(ctx, "posts", tooMany); !errors.Is(err, document.ErrIDSetTooLarge) {
		t.Errorf("oversized id set = %v, want ErrIDSetTooLarge", err)
	}
}

func TestStore_Transforms(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Add(ctx, "posts", map[string]any{
		"timestamp": document.ServerTimestamp,
		"count":     int64(0),
		"saved":     []string{},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	doc, _ := s.Get(ctx, "posts", id)
	ts, ok := doc.Fields["timestamp"].(time.Time)
	if !ok || ts.IsZero() {
		t.Fatalf("server timestamp not resolved: %v", doc.Fields["timestamp"])
	}

	err = s.Update(ctx, "posts", id, map[string]any{
		"count": document.Increment(2),
		"saved": document.ArrayUnion("a", "b"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	doc, _ = s.Get(ctx, "posts", id)
	if doc.Fields["count"] != int64(2) {
		t.Errorf("count = %v", doc.Fields["count"])
	}
	saved, _ := doc.Fields["saved"].([]string)
	if len(saved) != 2 || saved[0] != "a" || saved[1] != "b" {
		t.Errorf("saved = %v", saved)
	}

	_ = s.Update(ctx, "posts", id, map[string]any{"saved": document.ArrayRemove("a")})
	doc, _ = s.Get(ctx, "posts", id)
	saved, _ = doc.Fields["saved"].([]string)
	if len(saved) != 1 || saved[0] != "b" {
		t.Errorf("saved after remove = %v", saved)
	}
}

func TestStore_RunBatchAtomicity(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	postID, _ := s.Add(ctx, "posts", map[string]any{"title": "p", "commentCount": int64(0)})

	// A batch touching a missing document rolls back entirely.
	ops := []document.Op{
		document.SetOp("comments", s.NewID(), map[string]any{"text": "hi"}),
		document.UpdateOp("posts", "missing", map[string]any{"commentCount": document.Increment(1)}),
	}
	if err := s.RunBatch(ctx, ops); err == nil {
		t.Fatal("batch with missing update target should fail")
	}
	snap := collectionSnapshot(t, ctx, s, "comments")
	if len(snap) != 0 {
		t.Errorf("failed batch left %d comment(s) behind", len(snap))
	}

	// The comment write and the counter increment land together.
	commentID := s.NewID()
	ops = []document.Op{
		document.SetOp("comments", commentID, map[string]any{"text": "hi", "creationId": postID}),
		document.UpdateOp("posts", postID, map[string]any{"commentCount": document.Increment(1)}),
	}
	if err := s.RunBatch(ctx, ops); err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	post, _ := s.Get(ctx, "posts", postID)
	if post.Fields["commentCount"] != int64(1) {
		t.Errorf("commentCount = %v", post.Fields["commentCount"])
	}
	if _, err := s.Get(ctx, "comments", commentID); err != nil {
		t.Errorf("comment missing after batch: %v", err)
	}
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	q := document.NewQuery("posts").OrderBy("title", document.Ascending)
	w, err := s.Subscribe(ctx, q)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer w.Stop()

	// Initial snapshot is empty.
	snap := nextSnapshot(t, w)
	if len(snap) != 0 {
		t.Fatalf("initial snapshot has %d docs", len(snap))
	}

	if _, err := s.Add(ctx, "posts", map[string]any{"title": "b"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	snap = waitForSnapshotLen(t, w, 1)
	if snap[0].Fields["title"] != "b" {
		t.Errorf("snapshot = %v", snap[0].Fields)
	}

	if _, err := s.Add(ctx, "posts", map[string]any{"title": "a"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	snap = waitForSnapshotLen(t, w, 2)
	if snap[0].Fields["title"] != "a" || snap[1].Fields["title"] != "b" {
		t.Errorf("snapshot not ordered: %v, %v", snap[0].Fields, snap[1].Fields)
	}

	// Writes to other collections do not wake this watch; a subsequent write
	// to the watched collection must still come through.
	if _, err := s.Add(ctx, "other", map[string]any{"title": "x"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := s.Add(ctx, "posts", map[string]any{"title": "c"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	waitForSnapshotLen(t, w, 3)
}

func TestStore_SubscribeFiltered(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, _ = s.Add(ctx, "comments", map[string]any{"creationId": "c1", "text": "a"})
	_, _ = s.Add(ctx, "comments", map[string]any{"creationId": "c2", "text": "b"})

	q := document.NewQuery("comments").WhereEq("creationId", "c1")
	w, err := s.Subscribe(ctx, q)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer w.Stop()

	snap := nextSnapshot(t, w)
	if len(snap) != 1 || snap[0].Fields["text"] != "a" {
		t.Errorf("filtered snapshot = %v", snap)
	}
}

func TestStore_StopEndsWatch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	w, err := s.Subscribe(ctx, document.NewQuery("posts"))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	nextSnapshot(t, w)
	w.Stop()

	waitForClose(t, w)
	if err := w.Err(); err != nil {
		t.Errorf("clean stop reported error: %v", err)
	}
}

func TestStore_CloseRejectsFurtherOps(t *testing.T) {
	ctx := context.Background()
	s, err := Open(InMemoryConfig())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}

	if _, err := s.Get(ctx, "posts", "x"); !errors.Is(err, document.ErrStoreClosed) {
		t.Errorf("Get after close = %v, want ErrStoreClosed", err)
	}
	if _, err := s.Subscribe(ctx, document.NewQuery("posts")); !errors.Is(err, document.ErrStoreClosed) {
		t.Errorf("Subscribe after close = %v, want ErrStoreClosed", err)
	}
}

func collectionSnapshot(t *testing.T, ctx context.Context, s *Store, collection string) []document.Document {
	t.Helper()
	w, err := s.Subscribe(ctx, document.NewQuery(collection))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer w.Stop()
	return nextSnapshot(t, w)
}

func nextSnapshot(t *testing.T, w document.Watch) []document.Document {
	t.Helper()
	select {
	case snap, ok := <-w.Snapshots():
		if !ok {
			t.Fatalf("watch closed: %v", w.Err())
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot")
	}
	return nil
}

// waitForSnapshotLen reads snapshots until one has want documents. Rapid
// writes may coalesce, so intermediate lengths can be skipped.
func waitForSnapshotLen(t *testing.T, w document.Watch, want int) []document.Document {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-w.Snapshots():
			if !ok {
				t.Fatalf("watch closed: %v", w.Err())
			}
			if len(snap) == want {
				return snap
			}
		case <-deadline:
			t.Fatalf("no snapshot with %d docs", want)
		}
	}
}

func waitForClose(t *testing.T, w document.Watch) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-w.Snapshots():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel never closed")
		}
	}
}
