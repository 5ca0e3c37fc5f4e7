package badgerstore

import (
	"context"
	"sync"

	"github.com/cotovicz/dasein/pkg/document"
)

// watch is a live subscription on one query. It owns exactly one trigger
// registration in the store's watcher table for its lifetime; Stop releases
// it exactly once, error path included.
type watch struct {
	id      uint64
	store   *Store
	query   document.Query
	out     chan []document.Document
	trigger chan struct{}
	done    chan struct{}

	stopOnce sync.Once

	mu  sync.Mutex
	err error
}

// Snapshots implements document.Watch.
func (w *watch) Snapshots() <-chan []document.Document {
	return w.out
}

// Err implements document.Watch.
func (w *watch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Stop implements document.Watch.
func (w *watch) Stop() {
	w.stopOnce.Do(func() {
		w.store.dropWatcher(w.id)
		close(w.done)
	})
}

func (w *watch) fail(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
	w.store.logger.Warn("watch failed", "collection", w.query.Collection, "watch", w.id, "error", err)
	w.Stop()
}

// run recomputes and delivers snapshots until the watch stops. The first
// snapshot is delivered without waiting for a write.
func (w *watch) run(ctx context.Context) {
	defer close(w.out)

	for {
		snap, err := w.store.snapshot(w.query)
		if err != nil {
			w.fail(err)
			return
		}
		select {
		case w.out <- snap:
		case <-w.done:
			return
		case <-ctx.Done():
			w.Stop()
			return
		}

		select {
		case <-w.trigger:
		case <-w.done:
			return
		case <-ctx.Done():
			w.Stop()
			return
		}
	}
}
