package document

import (
	"sort"
	"strings"
	"time"
)

// Direction is a sort direction for an ordered query.
type Direction int

const (
	// Ascending orders results smallest-first.
	Ascending Direction = iota
	// Descending orders results largest-first.
	Descending
)

// Filter is a single equality predicate on a document field.
type Filter struct {
	Field string
	Value any
}

// Query describes an ordered, optionally filtered read of one collection.
// Results are ordered by OrderField in Dir, ties broken by document id so
// that snapshot order is deterministic.
type Query struct {
	Collection string
	Filters    []Filter
	OrderField string
	Dir        Direction

	// ID, when non-empty, restricts results to the single document with that
	// id. Used by detail watches.
	ID string
}

// NewQuery creates a query over the given collection, ordered by document id
// ascending until OrderBy is applied.
func NewQuery(collection string) Query {
	return Query{Collection: collection}
}

// WhereEq adds an equality filter. Filters combine with AND semantics.
func (q Query) WhereEq(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// OrderBy sets the sort field and direction.
func (q Query) OrderBy(field string, dir Direction) Query {
	q.OrderField = field
	q.Dir = dir
	return q
}

// WhereID restricts the query to one document id.
func (q Query) WhereID(id string) Query {
	q.ID = id
	return q
}

// Matches reports whether the document satisfies every filter of the query.
func (q Query) Matches(doc Document) bool {
	if q.ID != "" && doc.ID != q.ID {
		return false
	}
	for _, f := range q.Filters {
		if doc.Fields[f.Field] != f.Value {
			return false
		}
	}
	return true
}

// Sort orders documents in place per the query: by OrderField in Dir, ties
// broken by document id ascending so snapshots are deterministic. With no
// OrderField set, documents sort by id alone.
func (q Query) Sort(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if q.OrderField != "" {
			c := compareFieldValues(docs[i].Fields[q.OrderField], docs[j].Fields[q.OrderField])
			if c != 0 {
				if q.Dir == Descending {
					return c > 0
				}
				return c < 0
			}
		}
		return docs[i].ID < docs[j].ID
	})
}

func compareFieldValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	// Mixed or missing values: absent sorts first, otherwise equal.
	if a == nil && b != nil {
		return -1
	}
	if a != nil && b == nil {
		return 1
	}
	return 0
}
