package model

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cotovicz/dasein/pkg/document"
)

func TestDecodeCreation(t *testing.T) {
	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

	t.Run("full document", func(t *testing.T) {
		doc := document.Document{
			ID: "c1",
			Fields: map[string]any{
				FieldAuthorID:     "u1",
				FieldAuthorName:   "Alice",
				FieldTitle:        "Hello",
				FieldBody:         "body",
				FieldImageURL:     "https://img",
				FieldTimestamp:    ts,
				FieldCommentCount: int64(2),
				FieldTags:         []string{"a"},
			},
		}
		got, err := DecodeCreation(doc)
		if err != nil {
			t.Fatalf("DecodeCreation failed: %v", err)
		}
		want := Creation{
			ID: "c1", AuthorID: "u1", AuthorName: "Alice", Title: "Hello",
			Body: "body", ImageURL: "https://img", Timestamp: ts,
			CommentCount: 2, Tags: []string{"a"},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("DecodeCreation() = %+v, want %+v", got, want)
		}
	})

	t.Run("missing title fails with DecodeError", func(t *testing.T) {
		doc := document.Document{ID: "c2", Fields: map[string]any{FieldBody: "b"}}
		_, err := DecodeCreation(doc)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("err = %v, want *DecodeError", err)
		}
		if de.ID != "c2" || de.Field != FieldTitle {
			t.Errorf("DecodeError = %+v", de)
		}
	})

	t.Run("optional fields default", func(t *testing.T) {
		doc := document.Document{ID: "c3", Fields: map[string]any{FieldTitle: "t"}}
		got, err := DecodeCreation(doc)
		if err != nil {
			t.Fatalf("DecodeCreation failed: %v", err)
		}
		if got.CommentCount != 0 || !got.Timestamp.IsZero() || got.Tags != nil {
			t.Errorf("defaults not applied: %+v", got)
		}
	})
}

func TestEncodeCreation(t *testing.T) {
	t.Run("zero timestamp becomes server timestamp", func(t *testing.T) {
		fields := EncodeCreation(Creation{Title: "t"})
		if fields[FieldTimestamp] != document.ServerTimestamp {
			t.Errorf("timestamp = %v, want server-timestamp sentinel", fields[FieldTimestamp])
		}
	})

	t.Run("explicit timestamp is kept", func(t *testing.T) {
		ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
		fields := EncodeCreation(Creation{Title: "t", Timestamp: ts})
		if fields[FieldTimestamp] != ts {
			t.Errorf("timestamp = %v, want %v", fields[FieldTimestamp], ts)
		}
	})

	t.Run("id is not a field", func(t *testing.T) {
		fields := EncodeCreation(Creation{ID: "c1", Title: "t"})
		for name := range fields {
			if name == "id" {
				t.Error("id leaked into the field map")
			}
		}
	})
}

func TestDecodeComment(t *testing.T) {
	t.Run("requires text and creation id", func(t *testing.T) {
		_, err := DecodeComment(document.Document{ID: "x", Fields: map[string]any{FieldCreationID: "c1"}})
		var de *DecodeError
		if !errors.As(err, &de) || de.Field != FieldText {
			t.Errorf("missing text: err = %v", err)
		}

		_, err = DecodeComment(document.Document{ID: "x", Fields: map[string]any{FieldText: "hi"}})
		if !errors.As(err, &de) || de.Field != FieldCreationID {
			t.Errorf("missing creation id: err = %v", err)
		}
	})

	t.Run("top level has empty parent", func(t *testing.T) {
		c, err := DecodeComment(document.Document{ID: "x", Fields: map[string]any{
			FieldText: "hi", FieldCreationID: "c1",
		}})
		if err != nil {
			t.Fatalf("DecodeComment failed: %v", err)
		}
		if !c.IsTopLevel() {
			t.Error("comment without parent should be top level")
		}
	})
}

func TestProfileRoundTrip(t *testing.T) {
	p := UserProfile{UID: "u1", DisplayName: "Alice", Bio: "hi", SavedPostIDs: []string{"a", "b"}}

	doc := document.Document{ID: "u1", Fields: EncodeProfile(p)}
	got, err := DecodeProfile(doc)
	if err != nil {
		t.Fatalf("DecodeProfile failed: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}
	if !got.HasSaved("a") || got.HasSaved("z") {
		t.Error("HasSaved misreports membership")
	}
}

func TestInputValidation(t *testing.T) {
	t.Run("creation requires title", func(t *testing.T) {
		err := NewCreation{}.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "title" {
			t.Errorf("err = %v", err)
		}
		if err := (NewCreation{Title: "t"}).Validate(); err != nil {
			t.Errorf("valid input rejected: %v", err)
		}
	})

	t.Run("comment requires text", func(t *testing.T) {
		err := NewComment{}.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "text" {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("profile edit requires display name", func(t *testing.T) {
		err := ProfileEdit{Bio: "b"}.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "displayName" {
			t.Errorf("err = %v", err)
		}
	})
}
