// Package profile manages user profile documents: lazy provisioning on first
// sign-in, edits, and the saved-posts list. Profiles are the one entity read
// outside a live subscription, so every write re-fetches the document to
// refresh caller state.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/inflight"
	"github.com/cotovicz/dasein/pkg/model"
)

// Service reads and writes user profiles.
type Service struct {
	store  document.Store
	logger *slog.Logger
	gate   inflight.Gate
}

// NewService creates a profile service. A nil logger means slog's default.
func NewService(store document.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// DefaultDisplayName derives a display name from an email address: the local
// part before '@', or the full string when there is none.
func DefaultDisplayName(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// Get fetches a profile. Returns document.ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, uid string) (model.UserProfile, error) {
	doc, err := s.store.Get(ctx, model.CollectionUsers, uid)
	if err != nil {
		return model.UserProfile{}, err
	}
	return model.DecodeProfile(doc)
}

// Ensure fetches a profile, creating it first when the user has none yet.
// Exactly one profile exists per authenticated user; creation is lazy on
// first sign-in.
func (s *Service) Ensure(ctx context.Context, uid, email string) (model.UserProfile, error) {
	p, err := s.Get(ctx, uid)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, document.ErrNotFound) {
		return model.UserProfile{}, fmt.Errorf("failed to load profile: %w", err)
	}

	fresh := model.UserProfile{
		UID:         uid,
		DisplayName: DefaultDisplayName(email),
	}
	if err := s.store.Set(ctx, model.CollectionUsers, uid, model.EncodeProfile(fresh)); err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to create profile: %w", err)
	}
	s.logger.Info("profile created", "uid", uid)
	return s.Get(ctx, uid)
}

// Update applies a profile edit and returns the refreshed profile.
func (s *Service) Update(ctx context.Context, uid string, in model.ProfileEdit) (model.UserProfile, error) {
	if err := in.Validate(); err != nil {
		return model.UserProfile{}, err
	}
	if err := s.gate.Begin(); err != nil {
		return model.UserProfile{}, err
	}
	p, err := s.update(ctx, uid, in)
	s.gate.Finish(err)
	return p, err
}

func (s *Service) update(ctx context.Context, uid string, in model.ProfileEdit) (model.UserProfile, error) {
	updates := map[string]any{
		model.FieldDisplayName: in.DisplayName,
		model.FieldBio:         in.Bio,
	}
	if err := s.store.Update(ctx, model.CollectionUsers, uid, updates); err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Get(ctx, uid)
}

// ToggleSave flips whether the creation is in the user's saved list and
// returns the refreshed profile. The toggle runs through the same in-flight
// gate as other profile mutations, so a double invocation while one is
// running fails fast instead of racing.
func (s *Service) ToggleSave(ctx context.Context, uid, creationID string, currentlySaved bool) (model.UserProfile, error) {
	if err := s.gate.Begin(); err != nil {
		return model.UserProfile{}, err
	}
	p, err := s.toggleSave(ctx, uid, creationID, currentlySaved)
	s.gate.Finish(err)
	return p, err
}

func (s *Service) toggleSave(ctx context.Context, uid, creationID string, currentlySaved bool) (model.UserProfile, error) {
	var op any
	if currentlySaved {
		op = document.ArrayRemove(creationID)
	} else {
		op = document.ArrayUnion(creationID)
	}
	updates := map[string]any{model.FieldSavedPostIDs: op}
	if err := s.store.Update(ctx, model.CollectionUsers, uid, updates); err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to toggle save: %w", err)
	}
	return s.Get(ctx, uid)
}

// DisplayNameFor resolves a user's display name for denormalization at write
// time: the profile's display name when one exists, otherwise a name derived
// from the fallback email. Best-effort; lookup failures fall back silently.
func (s *Service) DisplayNameFor(ctx context.Context, uid, fallbackEmail string) string {
	fallback := DefaultDisplayName(fallbackEmail)
	p, err := s.Get(ctx, uid)
	if err != nil || p.DisplayName == "" {
		return fallback
	}
	return p.DisplayName
}

// InFlight reports whether a profile mutation is running.
func (s *Service) InFlight() bool {
	return s.gate.InFlight()
}

// AcknowledgeError consumes the sticky mutation error, if any.
func (s *Service) AcknowledgeError() (string, bool) {
	return s.gate.AcknowledgeError()
}
