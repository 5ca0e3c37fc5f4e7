package model

import (
	"time"

	"github.com/cotovicz/dasein/pkg/document"
)

// Document field names. Identifiers are store keys, never field content.
const (
	FieldAuthorID     = "userId"
	FieldAuthorName   = "authorName"
	FieldTitle        = "title"
	FieldBody         = "textContent"
	FieldImageURL     = "imageUrl"
	FieldTimestamp    = "timestamp"
	FieldCommentCount = "commentCount"
	FieldTags         = "tags"
	FieldCreationID   = "creationId"
	FieldText         = "commentText"
	FieldParentID     = "parentId"
	FieldDisplayName  = "displayName"
	FieldBio          = "bio"
	FieldSavedPostIDs = "savedPostIds"
)

// DecodeCreation converts a raw document into a Creation. Missing optional
// fields take their zero defaults; a missing or empty title fails with a
// *DecodeError so the caller can skip the document without failing the batch.
func DecodeCreation(doc document.Document) (Creation, error) {
	title := stringField(doc.Fields, FieldTitle)
	if title == "" {
		return Creation{}, &DecodeError{ID: doc.ID, Field: FieldTitle, Reason: "required field missing or empty"}
	}
	return Creation{
		ID:           doc.ID,
		AuthorID:     stringField(doc.Fields, FieldAuthorID),
		AuthorName:   stringField(doc.Fields, FieldAuthorName),
		Title:        title,
		Body:         stringField(doc.Fields, FieldBody),
		ImageURL:     stringField(doc.Fields, FieldImageURL),
		Timestamp:    timeField(doc.Fields, FieldTimestamp),
		CommentCount: intField(doc.Fields, FieldCommentCount),
		Tags:         stringListField(doc.Fields, FieldTags),
	}, nil
}

// EncodeCreation converts a Creation into document fields. The id is omitted:
// it is a store-assigned key. A zero Timestamp encodes as the server-timestamp
// sentinel so the store assigns its own clock on write.
func EncodeCreation(c Creation) map[string]any {
	fields := map[string]any{
		FieldAuthorID:     c.AuthorID,
		FieldAuthorName:   c.AuthorName,
		FieldTitle:        c.Title,
		FieldBody:         c.Body,
		FieldImageURL:     c.ImageURL,
		FieldCommentCount: c.CommentCount,
		FieldTags:         append([]string(nil), c.Tags...),
	}
	if c.Timestamp.IsZero() {
		fields[FieldTimestamp] = document.ServerTimestamp
	} else {
		fields[FieldTimestamp] = c.Timestamp
	}
	return fields
}

// DecodeComment converts a raw document into a Comment. Text and creationId
// are required; anything else defaults.
func DecodeComment(doc document.Document) (Comment, error) {
	text := stringField(doc.Fields, FieldText)
	if text == "" {
		return Comment{}, &DecodeError{ID: doc.ID, Field: FieldText, Reason: "required field missing or empty"}
	}
	creationID := stringField(doc.Fields, FieldCreationID)
	if creationID == "" {
		return Comment{}, &DecodeError{ID: doc.ID, Field: FieldCreationID, Reason: "required field missing or empty"}
	}
	return Comment{
		ID:         doc.ID,
		CreationID: creationID,
		AuthorID:   stringField(doc.Fields, FieldAuthorID),
		AuthorName: stringField(doc.Fields, FieldAuthorName),
		Text:       text,
		ParentID:   stringField(doc.Fields, FieldParentID),
		Timestamp:  timeField(doc.Fields, FieldTimestamp),
	}, nil
}

// EncodeComment converts a Comment into document fields, omitting the id.
func EncodeComment(c Comment) map[string]any {
	fields := map[string]any{
		FieldCreationID: c.CreationID,
		FieldAuthorID:   c.AuthorID,
		FieldAuthorName: c.AuthorName,
		FieldText:       c.Text,
		FieldParentID:   c.ParentID,
	}
	if c.Timestamp.IsZero() {
		fields[FieldTimestamp] = document.ServerTimestamp
	} else {
		fields[FieldTimestamp] = c.Timestamp
	}
	return fields
}

// DecodeProfile converts a raw document into a UserProfile. All fields
// default; a profile document can legitimately be sparse.
func DecodeProfile(doc document.Document) (UserProfile, error) {
	return UserProfile{
		UID:          doc.ID,
		DisplayName:  stringField(doc.Fields, FieldDisplayName),
		Bio:          stringField(doc.Fields, FieldBio),
		SavedPostIDs: stringListField(doc.Fields, FieldSavedPostIDs),
	}, nil
}

// EncodeProfile converts a UserProfile into document fields, omitting the uid.
func EncodeProfile(p UserProfile) map[string]any {
	return map[string]any{
		FieldDisplayName:  p.DisplayName,
		FieldBio:          p.Bio,
		FieldSavedPostIDs: append([]string(nil), p.SavedPostIDs...),
	}
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func intField(fields map[string]any, name string) int {
	switch v := fields[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func timeField(fields map[string]any, name string) time.Time {
	if v, ok := fields[name].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func stringListField(fields map[string]any, name string) []string {
	switch v := fields[name].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
