package model

import "fmt"

// DecodeError reports a remote document that could not be mapped to an
// entity. The offending document is skipped; decoding the rest of a snapshot
// proceeds.
type DecodeError struct {
	ID     string
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error on document %s, field %s: %s", e.ID, e.Field, e.Reason)
}

// ValidationError reports client-side input that fails validation before any
// remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}
