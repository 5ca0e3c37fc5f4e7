package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/model"
	"github.com/cotovicz/dasein/pkg/store/badgerstore"
)

func newTestService(t *testing.T) (*Service, *badgerstore.Store) {
	t.Helper()
	s, err := badgerstore.Open(badgerstore.InMemoryConfig())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return NewService(s, nil), s
}

func TestDefaultDisplayName(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"alice@example.com", "alice"},
		{"bob.smith@mail.org", "bob.smith"},
		{"no-at-sign", "no-at-sign"},
		{"@leading", "@leading"},
	}
	for _, tt := range tests {
		if got := DefaultDisplayName(tt.email); got != tt.want {
			t.Errorf("DefaultDisplayName(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

func TestService_Ensure(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	t.Run("creates a missing profile lazily", func(t *testing.T) {
		p, err := svc.Ensure(ctx, "u1", "alice@example.com")
		if err != nil {
			t.Fatalf("Ensure failed: %v", err)
		}
		if p.UID != "u1" || p.DisplayName != "alice" {
			t.Errorf("profile = %+v", p)
		}
	})

	t.Run("returns the existing profile on later calls", func(t *testing.T) {
		if _, err := svc.Update(ctx, "u1", model.ProfileEdit{DisplayName: "Alice W", Bio: "hi"}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		p, err := svc.Ensure(ctx, "u1", "alice@example.com")
		if err != nil {
			t.Fatalf("Ensure failed: %v", err)
		}
		if p.DisplayName != "Alice W" || p.Bio != "hi" {
			t.Errorf("Ensure overwrote the profile: %+v", p)
		}
	})
}

func TestService_Get_Missing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Get(ctx, "nobody")
	if !errors.Is(err, document.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Ensure(ctx, "u1", "alice@example.com"); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	t.Run("applies and refreshes", func(t *testing.T) {
		p, err := svc.Update(ctx, "u1", model.ProfileEdit{DisplayName: "New Name", Bio: "bio"})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if p.DisplayName != "New Name" || p.Bio != "bio" {
			t.Errorf("profile = %+v", p)
		}
	})

	t.Run("rejects an empty display name", func(t *testing.T) {
		_, err := svc.Update(ctx, "u1", model.ProfileEdit{})
		var ve *model.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("err = %v, want *ValidationError", err)
		}
	})
}

func TestService_ToggleSave(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Ensure(ctx, "u1", "alice@example.com"); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	p, err := svc.ToggleSave(ctx, "u1", "post1", false)
	if err != nil {
		t.Fatalf("ToggleSave failed: %v", err)
	}
	if !p.HasSaved("post1") {
		t.Error("post not saved")
	}

	p, err = svc.ToggleSave(ctx, "u1", "post2", false)
	if err != nil {
		t.Fatalf("ToggleSave failed: %v", err)
	}
	if got := p.SavedPostIDs; len(got) != 2 || got[0] != "post1" || got[1] != "post2" {
		t.Errorf("saved order = %v, want insertion order", got)
	}

	p, err = svc.ToggleSave(ctx, "u1", "post1", true)
	if err != nil {
		t.Fatalf("ToggleSave failed: %v", err)
	}
	if p.HasSaved("post1") || !p.HasSaved("post2") {
		t.Errorf("saved = %v", p.SavedPostIDs)
	}
}

func TestService_DisplayNameFor(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	t.Run("falls back to the email local part", func(t *testing.T) {
		if got := svc.DisplayNameFor(ctx, "nobody", "carol@example.com"); got != "carol" {
			t.Errorf("DisplayNameFor = %q", got)
		}
	})

	t.Run("prefers the profile name", func(t *testing.T) {
		if _, err := svc.Ensure(ctx, "u1", "alice@example.com"); err != nil {
			t.Fatalf("Ensure failed: %v", err)
		}
		if _, err := svc.Update(ctx, "u1", model.ProfileEdit{DisplayName: "Alice W"}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if got := svc.DisplayNameFor(ctx, "u1", "alice@example.com"); got != "Alice W" {
			t.Errorf("DisplayNameFor = %q", got)
		}
	})
}
