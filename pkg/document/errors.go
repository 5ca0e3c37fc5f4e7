package document

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrIDSetTooLarge is returned when a GetByIDs call exceeds MaxIDSetSize.
	ErrIDSetTooLarge = errors.New("id set exceeds store query limit")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store is closed")
)

// TransportError wraps a backend failure for a named operation. Subscriptions
// terminate with one; point operations return one.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}
