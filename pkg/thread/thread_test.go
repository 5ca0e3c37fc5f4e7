package thread

import (
	"reflect"
	"testing"

	"github.com/cotovicz/dasein/pkg/model"
)

func comment(id, parentID string) model.Comment {
	return model.Comment{ID: id, CreationID: "c1", ParentID: parentID, Text: "t" + id}
}

func TestBuild(t *testing.T) {
	// 1 and 4 top-level, 2 and 3 reply to 1, 99 orphaned.
	comments := []model.Comment{
		comment("1", ""),
		comment("2", "1"),
		comment("3", "1"),
		comment("4", ""),
		comment("99", "nope"),
	}

	ix := Build(comments)

	t.Run("top level preserves input order", func(t *testing.T) {
		got := ids(ix.TopLevel())
		if !reflect.DeepEqual(got, []string{"1", "4"}) {
			t.Errorf("TopLevel() = %v", got)
		}
	})

	t.Run("children preserve input order", func(t *testing.T) {
		got := ids(ix.Children("1"))
		if !reflect.DeepEqual(got, []string{"2", "3"}) {
			t.Errorf("Children(1) = %v", got)
		}
	})

	t.Run("leaf has no children", func(t *testing.T) {
		if got := ix.Children("4"); len(got) != 0 {
			t.Errorf("Children(4) = %v", got)
		}
	})
}

func TestIndex_Walk(t *testing.T) {
	comments := []model.Comment{
		comment("1", ""),
		comment("2", "1"),
		comment("3", "2"),
		comment("4", ""),
		comment("99", "nope"),
	}

	var visited []string
	var depths []int
	Build(comments).Walk(func(c model.Comment, depth int) {
		visited = append(visited, c.ID)
		depths = append(depths, depth)
	})

	if !reflect.DeepEqual(visited, []string{"1", "2", "3", "4"}) {
		t.Errorf("visit order = %v", visited)
	}
	if !reflect.DeepEqual(depths, []int{0, 1, 2, 0}) {
		t.Errorf("depths = %v", depths)
	}
}

func TestIndex_Walk_SelfParentIsOrphan(t *testing.T) {
	comments := []model.Comment{
		comment("1", ""),
		comment("2", "2"),
	}

	var visited []string
	Build(comments).Walk(func(c model.Comment, _ int) {
		visited = append(visited, c.ID)
	})

	if !reflect.DeepEqual(visited, []string{"1"}) {
		t.Errorf("visit order = %v", visited)
	}
}

func ids(comments []model.Comment) []string {
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.ID
	}
	return out
}
