package live

import (
	"context"
	"log/slog"

	"github.com/cotovicz/dasein/pkg/document"
)

// FetchOnce reads a single decoded snapshot of a query: it subscribes, takes
// the first snapshot, and releases the listener. The subscription is the only
// collection-read path stores expose, so one-shot reads ride on it.
func FetchOnce[T any](ctx context.Context, store document.Store, q document.Query, decode DecodeFunc[T], logger *slog.Logger) ([]T, error) {
	sub, err := Watch(ctx, store, q, decode, logger)
	if err != nil {
		return nil, err
	}
	defer sub.Stop()

	select {
	case snap, ok := <-sub.Updates():
		if !ok {
			return nil, sub.Err()
		}
		return snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
