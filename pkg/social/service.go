// Package social is the write and subscription surface for creations and
// comments. It sequences multi-step mutations (image upload before document
// write, comment writes batched with counter adjustments, cascade deletes)
// so every mutation has an all-or-nothing perceived outcome, and exposes the
// live typed subscriptions the feed and detail views observe.
package social

import (
	"context"
	"log/slog"

	"github.com/cotovicz/dasein/pkg/auth"
	"github.com/cotovicz/dasein/pkg/blob"
	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/inflight"
	"github.com/cotovicz/dasein/pkg/live"
	"github.com/cotovicz/dasein/pkg/model"
	"github.com/cotovicz/dasein/pkg/profile"
)

// Service coordinates creation and comment mutations and owns their
// subscriptions.
type Service struct {
	store    document.Store
	blobs    blob.Storage
	authp    auth.Provider
	profiles *profile.Service
	logger   *slog.Logger
	gate     inflight.Gate
}

// NewService creates the social service. A nil logger means slog's default.
func NewService(store document.Store, blobs blob.Storage, authp auth.Provider, profiles *profile.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		blobs:    blobs,
		authp:    authp,
		profiles: profiles,
		logger:   logger,
	}
}

// WatchFeed subscribes to all creations, newest first.
func (s *Service) WatchFeed(ctx context.Context) (*live.Subscription[model.Creation], error) {
	q := document.NewQuery(model.CollectionCreations).
		OrderBy(model.FieldTimestamp, document.Descending)
	return live.Watch(ctx, s.store, q, model.DecodeCreation, s.logger)
}

// WatchUserCreations subscribes to one author's creations, newest first.
func (s *Service) WatchUserCreations(ctx context.Context, userID string) (*live.Subscription[model.Creation], error) {
	q := document.NewQuery(model.CollectionCreations).
		WhereEq(model.FieldAuthorID, userID).
		OrderBy(model.FieldTimestamp, document.Descending)
	return live.Watch(ctx, s.store, q, model.DecodeCreation, s.logger)
}

// WatchCreation subscribes to a single creation. Snapshots carry one element
// while the creation exists and none after it is deleted.
func (s *Service) WatchCreation(ctx context.Context, creationID string) (*live.Subscription[model.Creation], error) {
	q := document.NewQuery(model.CollectionCreations).WhereID(creationID)
	return live.Watch(ctx, s.store, q, model.DecodeCreation, s.logger)
}

// WatchComments subscribes to a creation's comments, oldest first.
func (s *Service) WatchComments(ctx context.Context, creationID string) (*live.Subscription[model.Comment], error) {
	q := document.NewQuery(model.CollectionComments).
		WhereEq(model.FieldCreationID, creationID).
		OrderBy(model.FieldTimestamp, document.Ascending)
	return live.Watch(ctx, s.store, q, model.DecodeComment, s.logger)
}

// InFlight reports whether a mutation is currently running. UIs use it to
// gate resubmission.
func (s *Service) InFlight() bool {
	return s.gate.InFlight()
}

// LastError returns the sticky mutation error message, if one is pending.
func (s *Service) LastError() (string, bool) {
	return s.gate.LastError()
}

// AcknowledgeError consumes the sticky mutation error, if any.
func (s *Service) AcknowledgeError() (string, bool) {
	return s.gate.AcknowledgeError()
}

// requireUser resolves the signed-in user or fails with ErrNotAuthenticated
// before any remote call is made.
func (s *Service) requireUser() (auth.User, error) {
	user, ok := s.authp.CurrentUser()
	if !ok {
		return auth.User{}, auth.ErrNotAuthenticated
	}
	return user, nil
}
