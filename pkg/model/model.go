// Package model defines the typed entities of the posting domain and the
// codec between entities and raw store documents.
package model

import "time"

// Creation is a published post.
//
// AuthorName and CommentCount are denormalized: AuthorName is a snapshot taken
// at write time and never refreshed; CommentCount is maintained by the
// mutation layer alongside comment writes, not by a store constraint.
type Creation struct {
	ID           string
	AuthorID     string
	AuthorName   string
	Title        string
	Body         string
	ImageURL     string
	Timestamp    time.Time
	CommentCount int
	Tags         []string
}

// HasTag reports whether the creation carries the given tag.
func (c Creation) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Comment is a reply on a creation. ParentID is empty for top-level comments
// and otherwise names another comment on the same creation.
type Comment struct {
	ID         string
	CreationID string
	AuthorID   string
	AuthorName string
	Text       string
	ParentID   string
	Timestamp  time.Time
}

// IsTopLevel reports whether the comment has no parent.
func (c Comment) IsTopLevel() bool {
	return c.ParentID == ""
}

// UserProfile is the per-user profile document. Its id equals the
// authenticated user's id. SavedPostIDs keeps creation ids in the order the
// user saved them.
type UserProfile struct {
	UID          string
	DisplayName  string
	Bio          string
	SavedPostIDs []string
}

// HasSaved reports whether the given creation id is in the saved list.
func (p UserProfile) HasSaved(creationID string) bool {
	for _, id := range p.SavedPostIDs {
		if id == creationID {
			return true
		}
	}
	return false
}
