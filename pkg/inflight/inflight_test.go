package inflight

import (
	"errors"
	"testing"
)

func TestGate_Lifecycle(t *testing.T) {
	var g Gate

	if g.InFlight() {
		t.Fatal("fresh gate reports in flight")
	}
	if err := g.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if !g.InFlight() {
		t.Error("gate not in flight after Begin")
	}

	// A second Begin while running fails fast.
	if err := g.Begin(); !errors.Is(err, ErrMutationInFlight) {
		t.Errorf("second Begin = %v, want ErrMutationInFlight", err)
	}

	g.Finish(nil)
	if g.InFlight() {
		t.Error("gate still in flight after Finish")
	}
	if _, ok := g.LastError(); ok {
		t.Error("successful mutation left a sticky error")
	}
}

func TestGate_StickyError(t *testing.T) {
	var g Gate

	if err := g.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	g.Finish(errors.New("upload failed"))

	// The error stays visible until acknowledged.
	if msg, ok := g.LastError(); !ok || msg != "upload failed" {
		t.Fatalf("LastError = %q, %v", msg, ok)
	}
	if msg, ok := g.LastError(); !ok || msg != "upload failed" {
		t.Fatalf("LastError not sticky: %q, %v", msg, ok)
	}

	// Acknowledge consumes it exactly once.
	if msg, ok := g.AcknowledgeError(); !ok || msg != "upload failed" {
		t.Fatalf("AcknowledgeError = %q, %v", msg, ok)
	}
	if _, ok := g.AcknowledgeError(); ok {
		t.Error("error acknowledged twice")
	}
	if _, ok := g.LastError(); ok {
		t.Error("error still visible after acknowledge")
	}
}

func TestGate_ErrorDoesNotBlockNewMutations(t *testing.T) {
	var g Gate

	_ = g.Begin()
	g.Finish(errors.New("first"))

	if err := g.Begin(); err != nil {
		t.Fatalf("Begin after failure = %v", err)
	}
	// The sticky error stays pending; only AcknowledgeError clears it.
	if msg, ok := g.LastError(); !ok || msg != "first" {
		t.Errorf("LastError = %q, %v", msg, ok)
	}
	g.Finish(nil)
	if msg, ok := g.LastError(); !ok || msg != "first" {
		t.Errorf("successful Finish cleared the sticky error: %q, %v", msg, ok)
	}
}
