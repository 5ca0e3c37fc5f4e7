// Package push handles outbound push registration: retrieving a device token
// and recording it against the signed-in user. Delivery itself happens
// upstream; nothing here consumes notifications.
package push

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cotovicz/dasein/pkg/document"
)

// collectionDeviceTokens holds one document per user, keyed by uid.
const collectionDeviceTokens = "deviceTokens"

const (
	fieldToken     = "token"
	fieldUpdatedAt = "updatedAt"
)

// TokenSource yields the device's current registration token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource with a fixed token, for platforms that hand
// the token over out of band.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Registry records device tokens in the document store.
type Registry struct {
	store  document.Store
	logger *slog.Logger
}

// NewRegistry creates a token registry. A nil logger means slog's default.
func NewRegistry(store document.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{store: store, logger: logger}
}

// Register fetches the device token from src and records it for uid,
// replacing any previous token.
func (r *Registry) Register(ctx context.Context, uid string, src TokenSource) error {
	token, err := src.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve device token: %w", err)
	}
	fields := map[string]any{
		fieldToken:     token,
		fieldUpdatedAt: document.ServerTimestamp,
	}
	if err := r.store.Set(ctx, collectionDeviceTokens, uid, fields); err != nil {
		return fmt.Errorf("failed to record device token: %w", err)
	}
	r.logger.Debug("device token registered", "uid", uid)
	return nil
}
