package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/httpclient"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(Config{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Language: "ko-KR",
		CacheTTL: DefaultCacheTTL,
		HTTP:     httpclient.DefaultConfig(),
	}, discardLogger())
}

func items(n int) []core.CatalogItem {
	out := make([]core.CatalogItem, n)
	for i := range out {
		out[i] = core.CatalogItem{ID: i + 1, Title: "Movie", VoteAverage: 7}
	}
	return out
}

func TestFetchPage_Popular(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/popular" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "test-key" {
			t.Error("missing api_key")
		}
		if q.Get("language") != "ko-KR" {
			t.Errorf("unexpected language: %s", q.Get("language"))
		}
		if q.Get("page") != "2" {
			t.Errorf("unexpected page: %s", q.Get("page"))
		}
		if q.Has("with_genres") || q.Has("query") || q.Has("year") {
			t.Errorf("popular must ignore genre/text/year, got %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(pageResponse{Page: 2, Results: items(20), TotalPages: 500})
	}))

	page, err := client.FetchPage(context.Background(), core.FetchQuery{
		Endpoint: core.EndpointPopular,
		GenreID:  28,
		Text:     "ignored",
		Year:     2024,
		Page:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != PageSize {
		t.Fatalf("expected %d items, got %d", PageSize, len(page.Items))
	}
	if page.Number != 2 || page.TotalPages != 500 {
		t.Errorf("unexpected pagination: %+v", page)
	}
}

func TestFetchPage_Endpoints(t *testing.T) {
	tests := []struct {
		name   string
		query  core.FetchQuery
		path   string
		params map[string]string
	}{
		{
			name:  "now_playing",
			query: core.FetchQuery{Endpoint: core.EndpointNowPlaying},
			path:  "/movie/now_playing",
			params: map[string]string{
				"page": "1",
			},
		},
		{
			name:  "discover_with_year",
			query: core.FetchQuery{Endpoint: core.EndpointDiscover, GenreID: 35, Year: 2023, Page: 3},
			path:  "/discover/movie",
			params: map[string]string{
				"with_genres":          "35",
				"sort_by":              "popularity.desc",
				"primary_release_year": "2023",
				"page":                 "3",
			},
		},
		{
			name:  "search",
			query: core.FetchQuery{Endpoint: core.EndpointSearch, Text: "  inception "},
			path:  "/search/movie",
			params: map[string]string{
				"query": "inception",
				"page":  "1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.path {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				for k, v := range tt.params {
					if got := r.URL.Query().Get(k); got != v {
						t.Errorf("param %s = %q, want %q", k, got, v)
					}
				}
				json.NewEncoder(w).Encode(pageResponse{Page: 1, Results: items(1)})
			}))

			if _, err := client.FetchPage(context.Background(), tt.query); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFetchPage_InvalidQueries(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected for invalid queries")
	}))

	for _, q := range []core.FetchQuery{
		{Endpoint: core.EndpointDiscover},
		{Endpoint: core.EndpointSearch, Text: "   "},
		{Endpoint: "trending"},
	} {
		_, err := client.FetchPage(context.Background(), q)
		if !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("query %+v: expected ErrInvalidQuery, got %v", q, err)
		}
	}
}

func TestFetchPage_EmptyAPIKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected without an API key")
	})).WithAPIKey("")

	_, err := client.FetchPage(context.Background(), core.FetchQuery{Endpoint: core.EndpointPopular})
	if !errors.Is(err, core.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestFetchPage_RejectedKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_code": 7, "status_message": "Invalid API key: You must be granted a valid key."}`))
	}))

	_, err := client.FetchPage(context.Background(), core.FetchQuery{Endpoint: core.EndpointPopular})
	if !errors.Is(err, core.ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
	var apiErr *core.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *core.APIError, got %T", err)
	}
	if apiErr.Code != 7 {
		t.Errorf("expected status_code 7, got %d", apiErr.Code)
	}
}

func TestFetchPage_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))

	_, err := client.FetchPage(context.Background(), core.FetchQuery{Endpoint: core.EndpointPopular})
	if !errors.Is(err, core.ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
	if errors.Is(err, core.ErrAuth) {
		t.Error("500 must not be reported as an auth failure")
	}
}

func TestFetchPage_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := New(Config{APIKey: "k", BaseURL: baseURL}, discardLogger())
	_, err := client.FetchPage(context.Background(), core.FetchQuery{Endpoint: core.EndpointPopular})
	if !errors.Is(err, core.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if !IsUserFacing(err) {
		t.Error("network errors should be user facing")
	}
}

func TestFetchPage_MalformedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results": [`))
	}))

	_, err := client.FetchPage(context.Background(), core.FetchQuery{Endpoint: core.EndpointPopular})
	if !errors.Is(err, core.ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
}

func TestFetchPage_Caching(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(pageResponse{Page: 1, Results: items(3)})
	}))

	q := core.FetchQuery{Endpoint: core.EndpointPopular, Page: 1}
	for range 2 {
		if _, err := client.FetchPage(context.Background(), q); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// Client-side filters do not change the request.
	q.Language = "en"
	if _, err := client.FetchPage(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 server call, got %d", got)
	}

	q.Page = 2
	if _, err := client.FetchPage(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected a new call for page 2, got %d calls", got)
	}
}

func TestDetails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("append_to_response") != "videos,credits" {
			t.Errorf("unexpected append_to_response: %s", r.URL.Query().Get("append_to_response"))
		}
		w.Write([]byte(`{
			"id": 550, "title": "Fight Club", "release_date": "1999-10-15",
			"vote_average": 8.4, "runtime": 139,
			"genres": [{"id": 18, "name": "Drama"}],
			"videos": {"results": [{"key": "abc", "site": "YouTube", "type": "Trailer"}]},
			"credits": {"cast": [{"name": "Brad Pitt", "character": "Tyler Durden"}]}
		}`))
	}))

	details, err := client.Details(context.Background(), 550)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Title != "Fight Club" || details.Runtime != 139 {
		t.Errorf("unexpected details: %+v", details)
	}
	if len(details.Credits.Cast) != 1 || details.Credits.Cast[0].Name != "Brad Pitt" {
		t.Errorf("unexpected cast: %+v", details.Credits.Cast)
	}
	item := details.Item()
	if len(item.GenreIDs) != 1 || item.GenreIDs[0] != 18 {
		t.Errorf("expected genre ids from genres, got %v", item.GenreIDs)
	}
}

func TestGenres(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/genre/movie/list" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(genreListResponse{Genres: []core.Genre{{ID: 28, Name: "Action"}}})
	}))

	genres, err := client.Genres(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(genres) != 1 || genres[0].Name != "Action" {
		t.Errorf("unexpected genres: %+v", genres)
	}
}

func TestImageURLs(t *testing.T) {
	tests := []struct {
		path   string
		size   string
		expect string
	}{
		{"/abc123.jpg", "w500", "https://image.tmdb.org/t/p/w500/abc123.jpg"},
		{"", "w500", ""},
		{"/poster.jpg", "", "https://image.tmdb.org/t/p/original/poster.jpg"},
	}
	for _, tt := range tests {
		if got := PosterURL(tt.path, tt.size); got != tt.expect {
			t.Errorf("PosterURL(%q, %q) = %q, want %q", tt.path, tt.size, got, tt.expect)
		}
	}
	if got := BackdropURL("/b.jpg", "w1280"); got != "https://image.tmdb.org/t/p/w1280/b.jpg" {
		t.Errorf("BackdropURL = %q", got)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := newTTLCache[int](time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.set("a", 1)
	if v, ok := c.get("a"); !ok || v != 1 {
		t.Fatalf("expected cached value, got %v %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.get("a"); ok {
		t.Error("expected entry to expire")
	}
	if c.len() != 0 {
		t.Errorf("expected expired entry removed, len=%d", c.len())
	}
}

func TestTTLCacheDisabled(t *testing.T) {
	c := newTTLCache[int](0)
	c.set("a", 1)
	if _, ok := c.get("a"); ok {
		t.Error("zero ttl should disable caching")
	}
}

func TestLookupGenre(t *testing.T) {
	tests := []struct {
		in     string
		wantID int
		wantOK bool
	}{
		{"28", 28, true},
		{"action", 28, true},
		{" SF ", 878, true},
		{"99", 99, true},
		{"0", 0, false},
		{"western", 0, false},
	}
	for _, tt := range tests {
		g, ok := LookupGenre(tt.in)
		if ok != tt.wantOK || g.ID != tt.wantID {
			t.Errorf("LookupGenre(%q) = %+v, %v; want id %d, %v", tt.in, g, ok, tt.wantID, tt.wantOK)
		}
	}
}
