// Package storeutil carries helpers shared by store backends.
package storeutil

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDSource assigns document ids and write timestamps for one store instance.
// Ids are ULIDs, so they sort lexicographically by assignment time and break
// ordering ties deterministically. The clock is strictly increasing per
// instance, which keeps server-assigned timestamps monotonic per store.
type IDSource struct {
	mu        sync.Mutex
	lastClock time.Time
	entropy   *ulid.MonotonicEntropy
}

// NewIDSource creates an IDSource with monotonic ULID entropy.
func NewIDSource() *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// NewID returns a fresh ULID string.
func (s *IDSource) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowLocked()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		// Monotonic entropy overflow within one millisecond; restart entropy.
		s.entropy = ulid.Monotonic(rand.Reader, 0)
		id = ulid.MustNew(ulid.Timestamp(now), s.entropy)
	}
	return id.String()
}

// Now returns a strictly increasing clock reading.
func (s *IDSource) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowLocked()
}

func (s *IDSource) nowLocked() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastClock) {
		now = s.lastClock.Add(time.Microsecond)
	}
	s.lastClock = now
	return now
}
