package model

// Collection names in the remote store.
const (
	CollectionCreations = "creations"
	CollectionComments  = "comments"
	CollectionUsers     = "users"
	CollectionConfig    = "config"
)

// The config collection holds one well-known document listing the tags a
// creation may carry.
const (
	ConfigTagsDocID    = "tags"
	FieldAvailableTags = "availableTags"
)
