// Package accumulator merges successive catalog pages into one filtered
// result list for infinite-scroll views.
package accumulator

import (
	"errors"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

// ErrExhausted is returned when appending to a set that already saw an empty page.
var ErrExhausted = errors.New("result set exhausted")

// ResultSet is the accumulated, filtered list for one query.
type ResultSet struct {
	Items     []core.CatalogItem
	NextPage  int
	Exhausted bool
}

// Empty returns the starting set for a new query.
func Empty() ResultSet {
	return ResultSet{NextPage: 1}
}

// Keep reports whether an item passes the query's client-side filters.
// The language filter runs first, then the rating bucket.
func Keep(item core.CatalogItem, q core.FetchQuery) bool {
	if q.Language != "" && q.Language != core.LanguageAll && item.OriginalLanguage != q.Language {
		return false
	}
	return q.Rating.Keep(item.VoteAverage)
}

// Append merges one raw page into set and returns the new set.
// A page with no raw items marks the set exhausted. Items are appended
// in page order after the existing ones and are never de-duplicated.
// The input set is not modified.
func Append(set ResultSet, items []core.CatalogItem, q core.FetchQuery) (ResultSet, error) {
	if set.Exhausted {
		return set, ErrExhausted
	}
	if len(items) == 0 {
		set.Exhausted = true
		return set, nil
	}

	merged := make([]core.CatalogItem, len(set.Items), len(set.Items)+len(items))
	copy(merged, set.Items)
	for _, it := range items {
		if Keep(it, q) {
			merged = append(merged, it)
		}
	}

	next := set.NextPage
	if next < 1 {
		next = 1
	}
	return ResultSet{Items: merged, NextPage: next + 1}, nil
}

// Accumulator binds a result set to the query that produced it.
// It is not safe for concurrent use; Loader adds locking on top.
type Accumulator struct {
	query core.FetchQuery
	set   ResultSet
}

// New returns an empty accumulator for q.
func New(q core.FetchQuery) *Accumulator {
	q.Page = 0
	return &Accumulator{query: q, set: Empty()}
}

// Query returns the current query. Its Page field is always zero.
func (a *Accumulator) Query() core.FetchQuery { return a.query }

// SetQuery switches to q. When q differs from the current query in any
// field other than Page the set is reset and SetQuery returns true.
func (a *Accumulator) SetQuery(q core.FetchQuery) bool {
	q.Page = 0
	if core.SameQuery(a.query, q) {
		return false
	}
	a.query = q
	a.set = Empty()
	return true
}

// Reset empties the set while keeping the query.
func (a *Accumulator) Reset() {
	a.set = Empty()
}

// AppendPage merges a raw page fetched for the current query.
func (a *Accumulator) AppendPage(items []core.CatalogItem) error {
	next, err := Append(a.set, items, a.query)
	if err != nil {
		return err
	}
	a.set = next
	return nil
}

// Snapshot returns a copy of the current set.
func (a *Accumulator) Snapshot() ResultSet {
	s := a.set
	s.Items = append([]core.CatalogItem(nil), a.set.Items...)
	return s
}
