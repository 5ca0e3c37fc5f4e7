// Package inflight implements the per-service mutation gate: one logical
// mutation in flight at a time, with a sticky error that survives until it is
// explicitly acknowledged.
package inflight

import (
	"errors"
	"sync"
)

// ErrMutationInFlight is returned when a mutation is requested while another
// is still running on the same gate.
var ErrMutationInFlight = errors.New("another mutation is already in flight")

// Gate tracks the Idle → InFlight → {Success, Failed} → Idle cycle of a
// mutation owner. The zero value is ready to use.
type Gate struct {
	mu       sync.Mutex
	inFlight bool
	lastErr  string
	hasErr   bool
}

// Begin transitions to InFlight. It fails with ErrMutationInFlight when a
// mutation is already running; a prior sticky error does not block new
// mutations.
func (g *Gate) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight {
		return ErrMutationInFlight
	}
	g.inFlight = true
	return nil
}

// Finish transitions back to Idle, recording err's message as the sticky
// error when non-nil. A nil err does not clear a previous sticky error; only
// AcknowledgeError does.
func (g *Gate) Finish(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight = false
	if err != nil {
		g.lastErr = err.Error()
		g.hasErr = true
	}
}

// InFlight reports whether a mutation is currently running.
func (g *Gate) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// LastError returns the sticky error message, if one is pending.
func (g *Gate) LastError() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr, g.hasErr
}

// AcknowledgeError consumes the sticky error: it returns the pending message
// once and clears it.
func (g *Gate) AcknowledgeError() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	msg, ok := g.lastErr, g.hasErr
	g.lastErr = ""
	g.hasErr = false
	return msg, ok
}
