// Package feed derives the filtered feed view from three inputs: the live
// creation list, a free-text query, and a tag selection. The derived list is
// recomputed on any input change; a per-composer revision counter discards
// recomputations that finish after a newer input arrived, so recency wins
// over completion order.
package feed

import (
	"strings"
	"sync"

	"github.com/cotovicz/dasein/pkg/model"
)

// Filter applies the feed filter rules to a creation list.
//
// Text: case-insensitive substring match against title, body, or author name;
// a blank query passes everything. Tags: a creation passes when the selection
// is empty or when any of its tags is selected (OR semantics). The returned
// list preserves input order, so filtering is idempotent.
func Filter(base []model.Creation, query string, selectedTags map[string]struct{}) []model.Creation {
	query = strings.TrimSpace(strings.ToLower(query))
	out := make([]model.Creation, 0, len(base))
	for _, c := range base {
		if query != "" && !matchesText(c, query) {
			continue
		}
		if len(selectedTags) > 0 && !matchesTags(c, selectedTags) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesText(c model.Creation, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(c.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(c.Body), lowerQuery) ||
		strings.Contains(strings.ToLower(c.AuthorName), lowerQuery)
}

func matchesTags(c model.Creation, selected map[string]struct{}) bool {
	for _, t := range c.Tags {
		if _, ok := selected[t]; ok {
			return true
		}
	}
	return false
}

// Composer maintains the always-current filtered feed. Setters may be called
// from any goroutine; Updates delivers the newest derived list with
// intermediate results coalesced away.
type Composer struct {
	mu       sync.Mutex
	base     []model.Creation
	query    string
	selected map[string]struct{}
	rev      uint64
	current  []model.Creation

	updates   chan []model.Creation
	closeOnce sync.Once
	closed    bool
}

// NewComposer creates a composer with an empty base list, blank query, and
// empty tag selection.
func NewComposer() *Composer {
	return &Composer{
		selected: make(map[string]struct{}),
		updates:  make(chan []model.Creation, 1),
	}
}

// SetBase replaces the base creation list (a fresh snapshot from the live
// subscription).
func (c *Composer) SetBase(creations []model.Creation) {
	c.mu.Lock()
	c.base = creations
	rev := c.bumpLocked()
	c.mu.Unlock()
	go c.recompute(rev)
}

// SetQuery replaces the free-text query.
func (c *Composer) SetQuery(query string) {
	c.mu.Lock()
	c.query = query
	rev := c.bumpLocked()
	c.mu.Unlock()
	go c.recompute(rev)
}

// ToggleTag flips one tag in the selection.
func (c *Composer) ToggleTag(tag string) {
	c.mu.Lock()
	if _, ok := c.selected[tag]; ok {
		delete(c.selected, tag)
	} else {
		c.selected[tag] = struct{}{}
	}
	rev := c.bumpLocked()
	c.mu.Unlock()
	go c.recompute(rev)
}

// Query returns the current free-text query.
func (c *Composer) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SelectedTags returns a copy of the current tag selection.
func (c *Composer) SelectedTags() map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]struct{}, len(c.selected))
	for t := range c.selected {
		out[t] = struct{}{}
	}
	return out
}

// Snapshot returns the most recently derived filtered list.
func (c *Composer) Snapshot() []model.Creation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Updates delivers derived lists, newest-wins. A slow consumer only ever sees
// the latest result.
func (c *Composer) Updates() <-chan []model.Creation {
	return c.updates
}

// Close stops update delivery. Pending recomputations are discarded.
func (c *Composer) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.rev++
		c.mu.Unlock()
		close(c.updates)
	})
}

func (c *Composer) bumpLocked() uint64 {
	c.rev++
	return c.rev
}

// recompute derives the filtered list for the inputs as of rev and publishes
// it unless a newer input change has superseded it.
func (c *Composer) recompute(rev uint64) {
	c.mu.Lock()
	if rev != c.rev || c.closed {
		c.mu.Unlock()
		return
	}
	base := c.base
	query := c.query
	selected := make(map[string]struct{}, len(c.selected))
	for t := range c.selected {
		selected[t] = struct{}{}
	}
	c.mu.Unlock()

	result := Filter(base, query, selected)

	c.mu.Lock()
	defer c.mu.Unlock()
	if rev != c.rev || c.closed {
		return
	}
	c.current = result

	// Coalescing publish: replace a stale pending result rather than block.
	// Sends are non-blocking, so holding the lock here is safe and keeps the
	// publish ordered against Close.
	for {
		select {
		case c.updates <- result:
			return
		default:
			select {
			case <-c.updates:
			default:
			}
		}
	}
}
