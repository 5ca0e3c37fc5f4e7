package document

import "context"

// Watch is a live subscription to a query. Each value on Snapshots is a
// complete ordered result list for the query at one point in time. The
// channel is closed when the subscription ends; Err reports the terminal
// error, if any, after close. A watch never resumes after failing.
type Watch interface {
	// Snapshots delivers ordered result snapshots. Closed on Stop or on
	// transport failure.
	Snapshots() <-chan []Document

	// Err returns the terminal error once Snapshots is closed, or nil after a
	// clean Stop.
	Err() error

	// Stop releases the underlying listener. Idempotent; safe to call from
	// any goroutine.
	Stop()
}

// OpKind discriminates batch operations.
type OpKind int

const (
	// OpSet writes a full document at a known id.
	OpSet OpKind = iota
	// OpUpdate merges updates (including transforms) into an existing document.
	OpUpdate
	// OpDelete removes a document.
	OpDelete
)

// Op is one operation inside an atomic batch.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Fields     map[string]any
}

// SetOp builds a batch operation that writes fields at collection/id.
func SetOp(collection, id string, fields map[string]any) Op {
	return Op{Kind: OpSet, Collection: collection, ID: id, Fields: fields}
}

// UpdateOp builds a batch operation that merges updates into collection/id.
// The target document must exist when the batch commits.
func UpdateOp(collection, id string, updates map[string]any) Op {
	return Op{Kind: OpUpdate, Collection: collection, ID: id, Fields: updates}
}

// DeleteOp builds a batch operation that removes collection/id.
func DeleteOp(collection, id string) Op {
	return Op{Kind: OpDelete, Collection: collection, ID: id}
}

// Store is a remote document store. Implementations assign ids, resolve
// write-time transforms, and deliver live ordered snapshots for subscribed
// queries. All operations may fail with a *TransportError.
type Store interface {
	// NewID returns a fresh store-assigned document id. Ids are
	// lexicographically ordered by assignment time.
	NewID() string

	// Get fetches a single document. Returns ErrNotFound if absent.
	Get(ctx context.Context, collection, id string) (Document, error)

	// GetByIDs fetches the documents with the given ids. Missing ids are
	// silently dropped from the result. The id set must not exceed
	// MaxIDSetSize; larger sets fail with ErrIDSetTooLarge.
	GetByIDs(ctx context.Context, collection string, ids []string) ([]Document, error)

	// Add writes a new document under a fresh id and returns that id.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Set writes a full document at a known id, creating or replacing it.
	Set(ctx context.Context, collection, id string, fields map[string]any) error

	// Update merges updates (including transforms) into an existing document.
	// Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, updates map[string]any) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// RunBatch applies all operations atomically: either every op is applied
	// or none is.
	RunBatch(ctx context.Context, ops []Op) error

	// Subscribe starts a live watch on the query. Every call starts a fresh
	// listener; the caller owns the returned watch and must Stop it.
	Subscribe(ctx context.Context, q Query) (Watch, error)

	// Close releases the store. Active watches are stopped.
	Close() error
}

// MaxIDSetSize is the largest id set a single GetByIDs call accepts. Callers
// with more ids must partition them (see the saved-items resolver).
const MaxIDSetSize = 30
