// Package thread groups flat comment lists into parent→children indexes for
// rendering threaded discussions.
package thread

import "github.com/cotovicz/dasein/pkg/model"

// Index is a parent→ordered-children mapping built from one flat comment
// list. It is immutable once built; rebuild it whenever the input changes.
type Index struct {
	children map[string][]model.Comment
}

// Build groups comments by parent id in O(n), preserving each group's
// relative input order. The empty parent key holds the top-level comments.
// A comment whose parent id names no comment in the input (or names itself)
// is orphaned and appears in no traversal.
func Build(comments []model.Comment) *Index {
	children := make(map[string][]model.Comment)
	for _, c := range comments {
		children[c.ParentID] = append(children[c.ParentID], c)
	}
	return &Index{children: children}
}

// TopLevel returns the comments with no parent, in input order.
func (ix *Index) TopLevel() []model.Comment {
	return ix.children[""]
}

// Children returns the ordered replies to the given comment.
func (ix *Index) Children(parentID string) []model.Comment {
	return ix.children[parentID]
}

// Walk traverses the thread depth-first: each comment is visited immediately
// before its replies, with depth equal to the path length from its top-level
// ancestor. Orphaned comments are never visited.
func (ix *Index) Walk(visit func(c model.Comment, depth int)) {
	for _, c := range ix.TopLevel() {
		ix.walk(c, 0, visit)
	}
}

func (ix *Index) walk(c model.Comment, depth int, visit func(model.Comment, int)) {
	visit(c, depth)
	for _, reply := range ix.children[c.ID] {
		ix.walk(reply, depth+1, visit)
	}
}
