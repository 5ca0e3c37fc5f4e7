// Package document defines the backend-agnostic document store contract:
// documents, queries, live subscriptions, batched writes, and the field
// transforms (server timestamp, counter increment, array union/remove)
// that backends must apply at write time.
package document

import "time"

// Document is a raw document as delivered by a store: a store-assigned
// identifier plus a field map. The identifier is transport metadata, never
// part of the field content.
type Document struct {
	ID     string
	Fields map[string]any
}

// Clone returns a deep-enough copy of the document for safe hand-off across
// goroutines. Field values themselves are treated as immutable; slices are
// copied one level deep.
func (d Document) Clone() Document {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		if s, ok := v.([]string); ok {
			cp := make([]string, len(s))
			copy(cp, s)
			fields[k] = cp
			continue
		}
		fields[k] = v
	}
	return Document{ID: d.ID, Fields: fields}
}

// serverTimestamp is the sentinel type behind ServerTimestamp.
type serverTimestamp struct{}

// ServerTimestamp is a write-time sentinel: a field written with this value is
// replaced by the store's own clock when the write is applied. Store clocks
// are monotonic per store instance.
var ServerTimestamp = serverTimestamp{}

// IncrementValue is a write-time transform that adjusts a numeric field by
// Delta atomically within the write that carries it.
type IncrementValue struct {
	Delta int64
}

// Increment returns a transform that adds delta to the current numeric value
// of the field (missing field counts as zero).
func Increment(delta int64) IncrementValue {
	return IncrementValue{Delta: delta}
}

// ArrayUnionValue is a write-time transform that appends elements to a string
// list field, skipping elements already present. Append order is preserved.
type ArrayUnionValue struct {
	Elements []string
}

// ArrayUnion returns a transform that appends the given elements to a string
// list field if absent.
func ArrayUnion(elements ...string) ArrayUnionValue {
	return ArrayUnionValue{Elements: elements}
}

// ArrayRemoveValue is a write-time transform that removes all occurrences of
// the given elements from a string list field.
type ArrayRemoveValue struct {
	Elements []string
}

// ArrayRemove returns a transform that removes the given elements from a
// string list field.
func ArrayRemove(elements ...string) ArrayRemoveValue {
	return ArrayRemoveValue{Elements: elements}
}

// ApplyTransforms resolves write-time transforms in fields against the current
// field state, returning the fields to persist. now is the store's clock
// reading for this write. Shared by store implementations.
func ApplyTransforms(current map[string]any, updates map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(current)+len(updates))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range updates {
		switch tv := v.(type) {
		case serverTimestamp:
			out[k] = now
		case IncrementValue:
			out[k] = asInt64(out[k]) + tv.Delta
		case ArrayUnionValue:
			out[k] = arrayUnion(asStringList(out[k]), tv.Elements)
		case ArrayRemoveValue:
			out[k] = arrayRemove(asStringList(out[k]), tv.Elements)
		default:
			out[k] = v
		}
	}
	return out
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asStringList(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func arrayUnion(current, add []string) []string {
	out := make([]string, len(current), len(current)+len(add))
	copy(out, current)
	seen := make(map[string]struct{}, len(current))
	for _, e := range current {
		seen[e] = struct{}{}
	}
	for _, e := range add {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func arrayRemove(current, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, e := range remove {
		drop[e] = struct{}{}
	}
	out := make([]string, 0, len(current))
	for _, e := range current {
		if _, ok := drop[e]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}
