// Package session composes auth state with the user's profile: it observes
// sign-in changes, provisions the profile lazily on first sign-in, and keeps
// the current user+profile pair available to views.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cotovicz/dasein/pkg/auth"
	"github.com/cotovicz/dasein/pkg/model"
	"github.com/cotovicz/dasein/pkg/profile"
)

// State is the composed session state: the signed-in user and their profile,
// both nil when signed out.
type State struct {
	User    *auth.User
	Profile *model.UserProfile
}

// Session tracks auth state for its lifetime. Create with Start, release
// with Stop.
type Session struct {
	authp    auth.Provider
	profiles *profile.Service
	logger   *slog.Logger
	observer *auth.StateObserver

	mu    sync.Mutex
	state State

	updates chan State
}

// Start begins observing auth state. The observer is released by Stop.
func Start(ctx context.Context, authp auth.Provider, profiles *profile.Service, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		authp:    authp,
		profiles: profiles,
		logger:   logger,
		observer: authp.ObserveState(),
		updates:  make(chan State, 1),
	}
	go s.run(ctx)
	return s
}

// Current returns the latest composed state.
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Updates delivers composed states, newest-wins.
func (s *Session) Updates() <-chan State {
	return s.updates
}

// Stop releases the auth observer.
func (s *Session) Stop() {
	s.observer.Stop()
}

// ToggleSave flips the saved state of a creation for the signed-in user and
// refreshes the cached profile.
func (s *Session) ToggleSave(ctx context.Context, creationID string) error {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()
	if st.User == nil || st.Profile == nil {
		return auth.ErrNotAuthenticated
	}

	updated, err := s.profiles.ToggleSave(ctx, st.User.UID, creationID, st.Profile.HasSaved(creationID))
	if err != nil {
		return err
	}
	s.setProfile(&updated)
	return nil
}

// UpdateProfile applies a profile edit for the signed-in user and refreshes
// the cached profile.
func (s *Session) UpdateProfile(ctx context.Context, in model.ProfileEdit) error {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()
	if st.User == nil {
		return auth.ErrNotAuthenticated
	}

	updated, err := s.profiles.Update(ctx, st.User.UID, in)
	if err != nil {
		return err
	}
	s.setProfile(&updated)
	return nil
}

func (s *Session) setProfile(p *model.UserProfile) {
	s.mu.Lock()
	s.state.Profile = p
	st := s.state
	s.mu.Unlock()
	s.publish(st)
}

func (s *Session) run(ctx context.Context) {
	for user := range s.observer.States() {
		st := State{User: user}
		if user != nil {
			p, err := s.profiles.Ensure(ctx, user.UID, user.Email)
			if err != nil {
				s.logger.Warn("failed to provision profile", "uid", user.UID, "error", err)
			} else {
				st.Profile = &p
			}
		}
		s.mu.Lock()
		s.state = st
		s.mu.Unlock()
		s.publish(st)
	}
}

// publish delivers a state latest-wins.
func (s *Session) publish(st State) {
	for {
		select {
		case s.updates <- st:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
