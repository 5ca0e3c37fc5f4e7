// Package badgerstore implements the document store contract on top of an
// embedded BadgerDB instance. Writes notify in-process watchers, so live
// subscriptions work without any external infrastructure. Intended for local
// and single-node deployments; the postgres backend covers the shared case.
package badgerstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/store/storeutil"
)

// Config holds configuration for a badger-backed store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Useful for
	// testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives store-level log records. Badger's own logging is
	// disabled; nil means slog's default logger.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for a persistent local store.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns configuration for tests: no disk, no sync.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// Store is a document store backed by BadgerDB.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	ids    *storeutil.IDSource

	mu        sync.Mutex
	watchers  map[uint64]*watch
	nextWatch uint64
	closed    bool
}

// Open opens (or creates) a badger-backed store.
func Open(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", cfg.Path, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		db:       db,
		logger:   logger,
		ids:      storeutil.NewIDSource(),
		watchers: make(map[uint64]*watch),
	}, nil
}

// NewID returns a fresh store-assigned ULID.
func (s *Store) NewID() string {
	return s.ids.NewID()
}

func docKey(collection, id string) []byte {
	return []byte("doc/" + collection + "/" + id)
}

func collectionPrefix(collection string) []byte {
	return []byte("doc/" + collection + "/")
}

// Get fetches a single document.
func (s *Store) Get(ctx context.Context, collection, id string) (document.Document, error) {
	if err := s.guard(ctx); err != nil {
		return document.Document{}, err
	}
	var doc document.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(collection, id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			fields, err := document.UnmarshalFields(val)
			if err != nil {
				return err
			}
			doc = document.Document{ID: id, Fields: fields}
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return document.Document{}, document.ErrNotFound
	}
	if err != nil {
		return document.Document{}, &document.TransportError{Op: "get", Err: err}
	}
	return doc, nil
}

// GetByIDs fetches the documents with the given ids; missing ids are dropped.
func (s *Store) GetByIDs(ctx context.Context, collection string, ids []string) ([]document.Document, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	if len(ids) > document.MaxIDSetSize {
		return nil, document.ErrIDSetTooLarge
	}
	docs := make([]document.Document, 0, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(docKey(collection, id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var fields map[string]any
			if err := item.Value(func(val []byte) error {
				fields, err = document.UnmarshalFields(val)
				return err
			}); err != nil {
				return err
			}
			docs = append(docs, document.Document{ID: id, Fields: fields})
		}
		return nil
	})
	if err != nil {
		return nil, &document.TransportError{Op: "getByIds", Err: err}
	}
	return docs, nil
}

// Add writes a new document under a fresh id.
func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := s.NewID()
	if err := s.Set(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// Set writes a full document at a known id.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.RunBatch(ctx, []document.Op{document.SetOp(collection, id, fields)})
}

// Update merges updates into an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, updates map[string]any) error {
	return s.RunBatch(ctx, []document.Op{document.UpdateOp(collection, id, updates)})
}

// Delete removes a document. Absent documents are ignored.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.RunBatch(ctx, []document.Op{document.DeleteOp(collection, id)})
}

// RunBatch applies all operations inside one badger transaction. Either every
// op commits or none does.
func (s *Store) RunBatch(ctx context.Context, ops []document.Op) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	now := s.ids.Now()
	touched := make(map[string]struct{})
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, op := range ops {
			key := docKey(op.Collection, op.ID)
			switch op.Kind {
			case document.OpDelete:
				if err := txn.Delete(key); err != nil {
					return err
				}
			case document.OpSet, document.OpUpdate:
				current := map[string]any{}
				item, err := txn.Get(key)
				switch {
				case err == badger.ErrKeyNotFound:
					if op.Kind == document.OpUpdate {
						return fmt.Errorf("update %s/%s: %w", op.Collection, op.ID, document.ErrNotFound)
					}
				case err != nil:
					return err
				default:
					if op.Kind == document.OpUpdate {
						if err := item.Value(func(val []byte) error {
							current, err = document.UnmarshalFields(val)
							return err
						}); err != nil {
							return err
						}
					}
				}
				resolved := document.ApplyTransforms(current, op.Fields, now)
				data, err := document.MarshalFields(resolved)
				if err != nil {
					return err
				}
				if err := txn.Set(key, data); err != nil {
					return err
				}
			}
			touched[op.Collection] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return &document.TransportError{Op: "runBatch", Err: err}
	}
	s.notify(touched)
	return nil
}

// Subscribe starts a live watch on the query. The watch emits an initial
// snapshot, then a fresh snapshot after every committed write touching the
// collection.
func (s *Store) Subscribe(ctx context.Context, q document.Query) (document.Watch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, document.ErrStoreClosed
	}
	w := &watch{
		store:   s,
		query:   q,
		out:     make(chan []document.Document),
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.nextWatch++
	w.id = s.nextWatch
	s.watchers[w.id] = w
	s.logger.Debug("watch started", "collection", q.Collection, "watch", w.id)
	go w.run(ctx)
	return w, nil
}

// notify wakes every watcher whose collection was touched by a write.
func (s *Store) notify(collections map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.watchers {
		if _, ok := collections[w.query.Collection]; !ok {
			continue
		}
		select {
		case w.trigger <- struct{}{}:
		default:
			// A recompute is already pending; snapshots coalesce.
		}
	}
}

func (s *Store) dropWatcher(id uint64) {
	s.mu.Lock()
	delete(s.watchers, id)
	s.mu.Unlock()
}

// snapshot computes the full ordered result list for a query.
func (s *Store) snapshot(q document.Query) ([]document.Document, error) {
	prefix := collectionPrefix(q.Collection)
	var docs []document.Document
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(prefix):])
			var fields map[string]any
			if err := item.Value(func(val []byte) error {
				var err error
				fields, err = document.UnmarshalFields(val)
				return err
			}); err != nil {
				return err
			}
			doc := document.Document{ID: id, Fields: fields}
			if q.Matches(doc) {
				docs = append(docs, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &document.TransportError{Op: "subscribe", Err: err}
	}
	q.Sort(docs)
	return docs, nil
}

func (s *Store) guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &document.TransportError{Op: "context", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return document.ErrStoreClosed
	}
	return nil
}

// Close stops all watches and closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	watchers := make([]*watch, 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger: %w", err)
	}
	return nil
}
