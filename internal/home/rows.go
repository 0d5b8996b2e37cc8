// Package home assembles the landing screen: a featured movie and a
// fixed set of horizontally scrolling rows.
package home

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

// RowSpec names a row and the first-page query that fills it.
type RowSpec struct {
	Title string
	Query core.FetchQuery
}

// Row is a loaded row. Err is set when the row failed; other rows are
// unaffected.
type Row struct {
	Spec  RowSpec
	Items []core.CatalogItem
	Err   error
}

// Genre IDs used by the default rows.
const (
	GenreAction = 28
	GenreComedy = 35
	GenreHorror = 27
)

// DefaultRows returns the landing rows in display order.
func DefaultRows() []RowSpec {
	return []RowSpec{
		{Title: "Popular", Query: core.FetchQuery{Endpoint: core.EndpointPopular, Page: 1}},
		{Title: "Now Playing", Query: core.FetchQuery{Endpoint: core.EndpointNowPlaying, Page: 1}},
		{Title: "Action", Query: core.FetchQuery{Endpoint: core.EndpointDiscover, GenreID: GenreAction, Page: 1}},
		{Title: "Comedy", Query: core.FetchQuery{Endpoint: core.EndpointDiscover, GenreID: GenreComedy, Page: 1}},
		{Title: "Horror", Query: core.FetchQuery{Endpoint: core.EndpointDiscover, GenreID: GenreHorror, Page: 1}},
	}
}

const maxConcurrentRows = 4

// Load fetches every row concurrently and returns them in the order of specs.
func Load(ctx context.Context, source core.CatalogSource, specs []RowSpec, logger *slog.Logger) []Row {
	if logger == nil {
		logger = slog.Default()
	}

	rows := make([]Row, len(specs))
	p := pool.New().WithMaxGoroutines(maxConcurrentRows)
	for i, spec := range specs {
		p.Go(func() {
			page, err := source.FetchPage(ctx, spec.Query)
			if err != nil {
				logger.Warn("home row failed",
					slog.String("row", spec.Title),
					slog.String("error", err.Error()),
				)
				rows[i] = Row{Spec: spec, Err: err}
				return
			}
			rows[i] = Row{Spec: spec, Items: page.Items}
		})
	}
	p.Wait()
	return rows
}

// Featured returns the banner movie: the first item of the first row
// that loaded anything.
func Featured(rows []Row) (core.CatalogItem, bool) {
	for _, r := range rows {
		if r.Err == nil && len(r.Items) > 0 {
			return r.Items[0], true
		}
	}
	return core.CatalogItem{}, false
}
