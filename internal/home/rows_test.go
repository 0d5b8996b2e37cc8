package home

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

type stubSource struct {
	mu      sync.Mutex
	seen    []core.FetchQuery
	results map[core.EndpointKind][]core.CatalogItem
	failOn  int // genre id that fails
}

func (s *stubSource) FetchPage(_ context.Context, q core.FetchQuery) (core.Page, error) {
	s.mu.Lock()
	s.seen = append(s.seen, q)
	s.mu.Unlock()

	if s.failOn != 0 && q.GenreID == s.failOn {
		return core.Page{}, core.ErrNetwork
	}
	items := s.results[q.Endpoint]
	if q.Endpoint == core.EndpointDiscover {
		items = []core.CatalogItem{{ID: q.GenreID}}
	}
	return core.Page{Number: 1, Items: items}, nil
}

func (s *stubSource) Details(context.Context, int) (*core.MovieDetails, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSource) Genres(context.Context) ([]core.Genre, error) { return nil, nil }

func TestLoad(t *testing.T) {
	src := &stubSource{
		results: map[core.EndpointKind][]core.CatalogItem{
			core.EndpointPopular:    {{ID: 1, Title: "Top"}, {ID: 2}},
			core.EndpointNowPlaying: {{ID: 3}},
		},
		failOn: GenreComedy,
	}

	rows := Load(context.Background(), src, DefaultRows(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Len(t, rows, 5)
	assert.Len(t, src.seen, 5)

	assert.Equal(t, "Popular", rows[0].Spec.Title)
	assert.Len(t, rows[0].Items, 2)
	assert.Equal(t, "Now Playing", rows[1].Spec.Title)
	assert.Equal(t, []core.CatalogItem{{ID: GenreAction}}, rows[2].Items)

	assert.ErrorIs(t, rows[3].Err, core.ErrNetwork)
	assert.Empty(t, rows[3].Items)
	assert.NoError(t, rows[4].Err, "one failing row does not affect the others")

	featured, ok := Featured(rows)
	require.True(t, ok)
	assert.Equal(t, "Top", featured.Title)
}

func TestFeatured_SkipsEmptyAndFailedRows(t *testing.T) {
	rows := []Row{
		{Err: core.ErrAPI},
		{Items: nil},
		{Items: []core.CatalogItem{{ID: 9}}},
	}
	got, ok := Featured(rows)
	require.True(t, ok)
	assert.Equal(t, 9, got.ID)

	_, ok = Featured(nil)
	assert.False(t, ok)
}

func TestDefaultRows(t *testing.T) {
	var genres []int
	for _, r := range DefaultRows() {
		if r.Query.Endpoint == core.EndpointDiscover {
			genres = append(genres, r.Query.GenreID)
		}
	}
	assert.Equal(t, []int{28, 35, 27}, genres)
}
