package wishlist

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

// Filter selects which entries a view shows.
type Filter string

// Filters.
const (
	FilterAll       Filter = "all"
	FilterHighRated Filter = "high-rated"
	FilterRecent    Filter = "recent"
)

// Sort orders the entries of a view.
type Sort string

// Sort orders. SortDateDesc is the default.
const (
	SortDateDesc   Sort = "date-desc"
	SortDateAsc    Sort = "date-asc"
	SortTitleAsc   Sort = "title-asc"
	SortTitleDesc  Sort = "title-desc"
	SortRatingDesc Sort = "rating-desc"
	SortRatingAsc  Sort = "rating-asc"
)

// HighRatedThreshold is the lowest vote average FilterHighRated keeps.
const HighRatedThreshold = 8.0

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterHighRated, FilterRecent}

// Sorts lists every sort order in display order.
var Sorts = []Sort{SortDateDesc, SortDateAsc, SortTitleAsc, SortTitleDesc, SortRatingDesc, SortRatingAsc}

// ParseFilter parses a filter name; "" means FilterAll.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	if f := Filter(s); slices.Contains(Filters, f) {
		return f, nil
	}
	return "", fmt.Errorf("unknown wishlist filter %q", s)
}

// ParseSort parses a sort name; "" means SortDateDesc.
func ParseSort(s string) (Sort, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortDateDesc, nil
	}
	if o := Sort(s); slices.Contains(Sorts, o) {
		return o, nil
	}
	return "", fmt.Errorf("unknown wishlist sort %q", s)
}

// Options controls Apply.
type Options struct {
	Filter Filter
	Sort   Sort
	Now    time.Time    // reference time for FilterRecent; zero means time.Now
	Locale language.Tag // collation for title sorts
}

// Apply filters then sorts a copy of items. Equal keys keep their input order.
func Apply(items []core.CatalogItem, opts Options) []core.CatalogItem {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	out := make([]core.CatalogItem, 0, len(items))
	switch opts.Filter {
	case FilterHighRated:
		for _, it := range items {
			if it.VoteAverage >= HighRatedThreshold {
				out = append(out, it)
			}
		}
	case FilterRecent:
		cutoff := now.AddDate(0, -6, 0)
		for _, it := range items {
			if released, ok := it.Released(); ok && !released.Before(cutoff) {
				out = append(out, it)
			}
		}
	default:
		out = append(out, items...)
	}

	switch opts.Sort {
	case SortTitleAsc, SortTitleDesc:
		c := collate.New(opts.Locale)
		slices.SortStableFunc(out, func(a, b core.CatalogItem) int {
			r := c.CompareString(a.Title, b.Title)
			if opts.Sort == SortTitleDesc {
				return -r
			}
			return r
		})
	case SortRatingDesc:
		slices.SortStableFunc(out, func(a, b core.CatalogItem) int { return cmp.Compare(b.VoteAverage, a.VoteAverage) })
	case SortRatingAsc:
		slices.SortStableFunc(out, func(a, b core.CatalogItem) int { return cmp.Compare(a.VoteAverage, b.VoteAverage) })
	case SortDateAsc:
		slices.SortStableFunc(out, compareDates)
	default:
		slices.SortStableFunc(out, func(a, b core.CatalogItem) int { return compareDates(b, a) })
	}
	return out
}

// compareDates orders by release date; items without a valid date sort oldest.
func compareDates(a, b core.CatalogItem) int {
	ta, okA := a.Released()
	tb, okB := b.Released()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return ta.Compare(tb)
}
