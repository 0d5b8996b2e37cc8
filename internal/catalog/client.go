// Package catalog is a client for the TMDb v3 movie catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/httpclient"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "ko-KR"
	DefaultCacheTTL = 15 * time.Minute
	imageBaseURL    = "https://image.tmdb.org/t/p/"

	// PageSize is fixed by the upstream API.
	PageSize = 20
)

// Config configures a Client.
type Config struct {
	APIKey   string
	BaseURL  string
	Language string // sent as the language parameter on every request
	CacheTTL time.Duration
	HTTP     httpclient.Config
}

// Client is a TMDb API v3 client. It implements core.CatalogSource.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	http     *httpclient.Client
	pages    *ttlCache[core.Page]
	details  *ttlCache[*core.MovieDetails]
	genres   *ttlCache[[]core.Genre]
	logger   *slog.Logger
}

var _ core.CatalogSource = (*Client)(nil)

// New creates a new catalog client. Zero config fields fall back to defaults.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.HTTP == (httpclient.Config{}) {
		cfg.HTTP = httpclient.DefaultConfig()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		http:     httpclient.New(cfg.HTTP, logger),
		pages:    newTTLCache[core.Page](cfg.CacheTTL),
		details:  newTTLCache[*core.MovieDetails](cfg.CacheTTL),
		genres:   newTTLCache[[]core.Genre](cfg.CacheTTL),
		logger:   logger,
	}
}

// WithAPIKey returns a copy of the client bound to another key.
// The copy shares caches and transport with the original.
func (c *Client) WithAPIKey(apiKey string) *Client {
	cp := *c
	cp.apiKey = apiKey
	return &cp
}

// FetchPage fetches one page of raw results for the query.
// Client-side filters in the query are not applied here.
func (c *Client) FetchPage(ctx context.Context, q core.FetchQuery) (core.Page, error) {
	if c.apiKey == "" {
		return core.Page{}, fmt.Errorf("fetch page: %w: no API key", core.ErrAuth)
	}

	path, params, err := request(q)
	if err != nil {
		return core.Page{}, err
	}
	params.Set("page", strconv.Itoa(pageNumber(q.Page)))

	key := cacheKey(c.apiKey, path, params)
	if page, ok := c.pages.get(key); ok {
		return page, nil
	}

	var resp pageResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return core.Page{}, fmt.Errorf("fetch %s page %d: %w", q.Endpoint, pageNumber(q.Page), err)
	}

	page := core.Page{
		Number:       resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
		Items:        resp.Results,
	}
	if page.Number == 0 {
		page.Number = pageNumber(q.Page)
	}

	c.logger.Debug("fetched catalog page",
		slog.String("endpoint", string(q.Endpoint)),
		slog.Int("page", page.Number),
		slog.Int("items", len(page.Items)),
	)

	c.pages.set(key, page)
	return page, nil
}

// Details retrieves full details for a movie, including videos and credits.
func (c *Client) Details(ctx context.Context, id int) (*core.MovieDetails, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("get movie %d: %w: no API key", id, core.ErrAuth)
	}

	params := url.Values{"append_to_response": {"videos,credits"}}
	path := fmt.Sprintf("/movie/%d", id)
	key := cacheKey(c.apiKey, path, params)
	if d, ok := c.details.get(key); ok {
		return d, nil
	}

	var details core.MovieDetails
	if err := c.get(ctx, path, params, &details); err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}

	c.details.set(key, &details)
	return &details, nil
}

// Genres lists the movie genres.
func (c *Client) Genres(ctx context.Context) ([]core.Genre, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("list genres: %w: no API key", core.ErrAuth)
	}

	const path = "/genre/movie/list"
	key := cacheKey(c.apiKey, path, nil)
	if g, ok := c.genres.get(key); ok {
		return g, nil
	}

	var resp genreListResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}

	c.genres.set(key, resp.Genres)
	return resp.Genres, nil
}

// PosterURL returns the full URL for a poster path.
func PosterURL(posterPath, size string) string {
	return imageURL(posterPath, size)
}

// BackdropURL returns the full URL for a backdrop path.
func BackdropURL(backdropPath, size string) string {
	return imageURL(backdropPath, size)
}

func imageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "original"
	}
	return imageBaseURL + size + path
}

// get performs an authenticated GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decode response: %w", core.ErrAPI, err)
	}
	return nil
}

// apiError builds a *core.APIError from a failed response, preferring the
// status_message from the JSON error body.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &core.APIError{StatusCode: resp.StatusCode}

	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.StatusMessage != "" {
		apiErr.Code = er.StatusCode
		apiErr.Message = er.StatusMessage
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// IsUserFacing reports whether err is one of the catalog failures a view
// should show as a notice rather than treat as a bug.
func IsUserFacing(err error) bool {
	return errors.Is(err, core.ErrNetwork) ||
		errors.Is(err, core.ErrAPI) ||
		errors.Is(err, core.ErrAuth) ||
		errors.Is(err, ErrInvalidQuery)
}
