package session

import (
	"context"
	"testing"
	"time"

	"github.com/cotovicz/dasein/pkg/auth"
	"github.com/cotovicz/dasein/pkg/model"
	"github.com/cotovicz/dasein/pkg/profile"
	"github.com/cotovicz/dasein/pkg/store/badgerstore"
)

func newTestSession(t *testing.T) (*Session, *auth.Manager) {
	t.Helper()
	s, err := badgerstore.Open(badgerstore.InMemoryConfig())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	authm, err := auth.New(s, auth.Config{Secret: []byte("test-secret")})
	if err != nil {
		t.Fatalf("failed to create auth manager: %v", err)
	}

	sess := Start(context.Background(), authm, profile.NewService(s, nil), nil)
	t.Cleanup(sess.Stop)
	return sess, authm
}

func TestSession_ProvisionsProfileOnSignIn(t *testing.T) {
	ctx := context.Background()
	sess, authm := newTestSession(t)

	// Signed out initially.
	st := waitForState(t, sess, func(st State) bool { return st.User == nil })
	if st.Profile != nil {
		t.Error("signed-out state carries a profile")
	}

	user, err := authm.SignUp(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	st = waitForState(t, sess, func(st State) bool { return st.User != nil && st.Profile != nil })
	if st.User.UID != user.UID {
		t.Errorf("state user = %+v", st.User)
	}
	if st.Profile.DisplayName != "alice" {
		t.Errorf("profile = %+v, want lazily provisioned default", st.Profile)
	}

	authm.SignOut()
	waitForState(t, sess, func(st State) bool { return st.User == nil })
}

func TestSession_ToggleSave(t *testing.T) {
	ctx := context.Background()
	sess, authm := newTestSession(t)

	if err := sess.ToggleSave(ctx, "post1"); err != auth.ErrNotAuthenticated {
		t.Errorf("signed-out toggle = %v, want ErrNotAuthenticated", err)
	}

	if _, err := authm.SignUp(ctx, "alice@example.com", "secret1"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	waitForState(t, sess, func(st State) bool { return st.Profile != nil })

	if err := sess.ToggleSave(ctx, "post1"); err != nil {
		t.Fatalf("ToggleSave failed: %v", err)
	}
	if !sess.Current().Profile.HasSaved("post1") {
		t.Error("profile not refreshed after save")
	}

	if err := sess.ToggleSave(ctx, "post1"); err != nil {
		t.Fatalf("ToggleSave failed: %v", err)
	}
	if sess.Current().Profile.HasSaved("post1") {
		t.Error("second toggle should un-save")
	}
}

func TestSession_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	sess, authm := newTestSession(t)

	if _, err := authm.SignUp(ctx, "alice@example.com", "secret1"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	waitForState(t, sess, func(st State) bool { return st.Profile != nil })

	if err := sess.UpdateProfile(ctx, model.ProfileEdit{DisplayName: "Alice W", Bio: "hi"}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	got := sess.Current().Profile
	if got.DisplayName != "Alice W" || got.Bio != "hi" {
		t.Errorf("profile = %+v", got)
	}
}

// waitForState polls Current until ok accepts the state. Update delivery is
// coalescing, so polling the snapshot is the stable observation.
func waitForState(t *testing.T, sess *Session, ok func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st := sess.Current()
		if ok(st) {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("state condition never met")
	return State{}
}
