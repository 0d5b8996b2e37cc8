// Package mcp exposes the catalog and the wishlist as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/cinegrid/internal/accumulator"
	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/wishlist"
)

// maxBrowsePages caps how many pages one browse_catalog call may fetch.
const maxBrowsePages = 5

// Deps holds backend dependencies for MCP tool handlers.
type Deps struct {
	Catalog  core.CatalogSource
	Wishlist *wishlist.Store
}

// Server wraps an MCP SDK server with cinegrid tool handlers.
type Server struct {
	server *mcpsdk.Server
	deps   Deps
	logger *slog.Logger
}

// NewServer creates an MCP server with all cinegrid tools registered.
func NewServer(deps Deps, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "cinegrid",
			Version: version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, deps: deps, logger: logger}
	srv.registerTools()
	return srv
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func (s *Server) registerTools() {
	s.server.AddTool(browseCatalogTool(), s.handleBrowseCatalog)
	s.server.AddTool(getMovieDetailsTool(), s.handleGetMovieDetails)
	s.server.AddTool(listGenresTool(), s.handleListGenres)
	s.server.AddTool(wishlistListTool(), s.handleWishlistList)
	s.server.AddTool(wishlistToggleTool(), s.handleWishlistToggle)
}

func browseCatalogTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name: "browse_catalog",
		Description: "Browse the movie catalog. endpoint is popular, now_playing, discover (needs genre_id) or search (needs text). " +
			"language and rating filter the fetched pages locally. Returns the accumulated items, the next page and whether the listing is exhausted.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"endpoint": map[string]any{
					"type": "string",
					"enum": []any{"popular", "now_playing", "discover", "search"},
				},
				"genre_id": map[string]any{
					"type":        "integer",
					"description": "Genre for discover, e.g. 28 for Action",
				},
				"text": map[string]any{
					"type":        "string",
					"description": "Search text",
				},
				"year": map[string]any{
					"type":        "integer",
					"description": "Optional release year for discover and search",
				},
				"language": map[string]any{
					"type":        "string",
					"description": "Original language code such as en or ko; all keeps everything",
				},
				"rating": map[string]any{
					"type":        "string",
					"description": "Rating bucket: all, <=4, or a one-point range such as 7-8",
				},
				"page": map[string]any{
					"type":        "integer",
					"description": "First page to fetch (default 1)",
				},
				"pages": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Number of pages to fetch, 1-%d (default 1)", maxBrowsePages),
				},
			},
		},
	}
}

func getMovieDetailsTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_movie_details",
		Description: "Get detailed information about a movie by its TMDb ID, including runtime, genres, trailers and cast.",
		InputSchema: tmdbIDSchema("The TMDb ID of the movie"),
	}
}

func listGenresTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "list_genres",
		Description: "List the movie genres with their IDs.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func wishlistListTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "wishlist_list",
		Description: "List the saved wishlist, optionally filtered (all, high-rated, recent) and sorted (date-desc, date-asc, title-asc, title-desc, rating-desc, rating-asc).",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"filter": map[string]any{"type": "string"},
				"sort":   map[string]any{"type": "string"},
			},
		},
	}
}

func wishlistToggleTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "wishlist_toggle",
		Description: "Add a movie to the wishlist, or remove it if it is already there.",
		InputSchema: tmdbIDSchema("The TMDb ID of the movie"),
	}
}

func tmdbIDSchema(desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tmdb_id": map[string]any{
				"type":        "integer",
				"description": desc,
			},
		},
		"required": []any{"tmdb_id"},
	}
}

type browseArgs struct {
	Endpoint string `json:"endpoint"`
	GenreID  int    `json:"genre_id"`
	Text     string `json:"text"`
	Year     int    `json:"year"`
	Language string `json:"language"`
	Rating   string `json:"rating"`
	Page     int    `json:"page"`
	Pages    int    `json:"pages"`
}

type browseResult struct {
	Items     []core.CatalogItem `json:"items"`
	NextPage  int                `json:"next_page"`
	Exhausted bool               `json:"exhausted"`
}

func (a browseArgs) query() (core.FetchQuery, error) {
	endpoint, err := core.ParseEndpointKind(a.Endpoint)
	if err != nil {
		return core.FetchQuery{}, err
	}
	rating, err := core.ParseRatingBucket(a.Rating)
	if err != nil {
		return core.FetchQuery{}, err
	}
	return core.FetchQuery{
		Endpoint: endpoint,
		GenreID:  a.GenreID,
		Year:     a.Year,
		Text:     a.Text,
		Language: a.Language,
		Rating:   rating,
	}, nil
}

func (s *Server) handleBrowseCatalog(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Catalog == nil {
		return toolError("catalog not configured"), nil
	}

	var args browseArgs
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}
	q, err := args.query()
	if err != nil {
		return toolError(err.Error()), nil
	}
	pages := min(max(args.Pages, 1), maxBrowsePages)

	set := accumulator.ResultSet{NextPage: max(args.Page, 1)}
	for range pages {
		if set.Exhausted {
			break
		}
		q.Page = set.NextPage
		page, err := s.deps.Catalog.FetchPage(ctx, q)
		if err != nil {
			return toolError(fmt.Sprintf("browse failed: %v", err)), nil
		}
		if set, err = accumulator.Append(set, page.Items, q); err != nil {
			return toolError(err.Error()), nil
		}
	}

	items := set.Items
	if items == nil {
		items = []core.CatalogItem{}
	}
	return toolJSON(browseResult{Items: items, NextPage: set.NextPage, Exhausted: set.Exhausted})
}

func (s *Server) handleGetMovieDetails(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Catalog == nil {
		return toolError("catalog not configured"), nil
	}

	tmdbID, err := extractIntFromArgs(req.Params.Arguments, "tmdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	details, err := s.deps.Catalog.Details(ctx, tmdbID)
	if err != nil {
		return toolError(fmt.Sprintf("get movie failed: %v", err)), nil
	}
	return toolJSON(details)
}

func (s *Server) handleListGenres(ctx context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Catalog == nil {
		return toolError("catalog not configured"), nil
	}

	genres, err := s.deps.Catalog.Genres(ctx)
	if err != nil {
		return toolError(fmt.Sprintf("list genres failed: %v", err)), nil
	}
	return toolJSON(genres)
}

func (s *Server) handleWishlistList(_ context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Wishlist == nil {
		return toolError("wishlist not configured"), nil
	}

	var args struct {
		Filter string `json:"filter"`
		Sort   string `json:"sort"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}
	filter, err := wishlist.ParseFilter(args.Filter)
	if err != nil {
		return toolError(err.Error()), nil
	}
	order, err := wishlist.ParseSort(args.Sort)
	if err != nil {
		return toolError(err.Error()), nil
	}

	return toolJSON(wishlist.Apply(s.deps.Wishlist.List(), wishlist.Options{Filter: filter, Sort: order}))
}

func (s *Server) handleWishlistToggle(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Wishlist == nil {
		return toolError("wishlist not configured"), nil
	}

	tmdbID, err := extractIntFromArgs(req.Params.Arguments, "tmdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	item, added, err := s.deps.Wishlist.ToggleFunc(tmdbID, func() (core.CatalogItem, error) {
		if s.deps.Catalog == nil {
			return core.CatalogItem{}, errors.New("catalog not configured")
		}
		details, err := s.deps.Catalog.Details(ctx, tmdbID)
		if err != nil {
			return core.CatalogItem{}, fmt.Errorf("get movie failed: %w", err)
		}
		return details.Item(), nil
	})
	if err != nil {
		return toolError(fmt.Sprintf("wishlist update failed: %v", err)), nil
	}
	s.logger.Info("wishlist toggled via mcp", slog.Int("tmdb_id", tmdbID), slog.Bool("added", added))

	return toolJSON(map[string]any{
		"tmdb_id": tmdbID,
		"title":   item.Title,
		"added":   added,
		"count":   s.deps.Wishlist.Len(),
	})
}

// toolJSON marshals v to JSON and returns it as text content.
func toolJSON(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

var errMissingArguments = errors.New("arguments are required")

// extractIntFromArgs extracts an integer argument from raw JSON arguments.
func extractIntFromArgs(raw json.RawMessage, key string) (int, error) {
	if len(raw) == 0 {
		return 0, errMissingArguments
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}

	switch v := val.(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, val)
	}
}
