// Package live adapts raw document watches into typed entity subscriptions.
// Each subscription owns exactly one underlying watch, decodes every snapshot
// through a caller-supplied decoder, and terminates with a typed failure when
// the transport gives out. Documents that fail to decode are skipped and
// logged; one malformed document never poisons a snapshot.
package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cotovicz/dasein/pkg/document"
)

// SyncFailure is the terminal error of a failed subscription. A failed
// subscription never resumes; the consumer resubscribes explicitly.
type SyncFailure struct {
	Collection string
	Err        error
}

// Error implements the error interface.
func (e *SyncFailure) Error() string {
	return fmt.Sprintf("sync failed on collection %s: %v", e.Collection, e.Err)
}

// Unwrap returns the underlying error.
func (e *SyncFailure) Unwrap() error {
	return e.Err
}

// DecodeFunc maps a raw document to a typed entity.
type DecodeFunc[T any] func(document.Document) (T, error)

// Subscription is a live, typed view of one query. Updates carries complete
// ordered entity lists; it closes when the subscription ends. Err reports the
// terminal *SyncFailure after close, or nil after a clean Stop.
type Subscription[T any] struct {
	watch document.Watch
	out   chan []T
	done  chan struct{}

	collection string
	logger     *slog.Logger

	stopOnce sync.Once

	mu  sync.Mutex
	err error
}

// Watch subscribes to a query and decodes every snapshot with decode. The
// caller owns the subscription and must Stop it; cancelling ctx also tears
// it down.
func Watch[T any](ctx context.Context, store document.Store, q document.Query, decode DecodeFunc[T], logger *slog.Logger) (*Subscription[T], error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := store.Subscribe(ctx, q)
	if err != nil {
		return nil, err
	}
	sub := &Subscription[T]{
		watch:      w,
		out:        make(chan []T),
		done:       make(chan struct{}),
		collection: q.Collection,
		logger:     logger,
	}
	go sub.run(decode)
	return sub, nil
}

// Updates delivers decoded snapshots. Closed when the subscription ends.
func (s *Subscription[T]) Updates() <-chan []T {
	return s.out
}

// Err returns the terminal failure once Updates is closed.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop releases the underlying listener. Idempotent; a consumer that stops
// reading Updates may Stop without draining.
func (s *Subscription[T]) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.watch.Stop()
	})
}

func (s *Subscription[T]) run(decode DecodeFunc[T]) {
	defer close(s.out)

	for snap := range s.watch.Snapshots() {
		entities := make([]T, 0, len(snap))
		for _, doc := range snap {
			entity, err := decode(doc)
			if err != nil {
				s.logger.Warn("skipping undecodable document",
					"collection", s.collection, "id", doc.ID, "error", err)
				continue
			}
			entities = append(entities, entity)
		}
		select {
		case s.out <- entities:
		case <-s.done:
			// Consumer left without draining; keep the watch channel moving
			// until it closes so the store goroutine is not wedged.
		}
	}

	if err := s.watch.Err(); err != nil {
		s.mu.Lock()
		s.err = &SyncFailure{Collection: s.collection, Err: err}
		s.mu.Unlock()
	}
}
