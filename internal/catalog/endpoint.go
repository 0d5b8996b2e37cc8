package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

// ErrInvalidQuery is returned when a query is missing a parameter its endpoint requires.
var ErrInvalidQuery = errors.New("invalid catalog query")

// request resolves a query into an API path and its endpoint-specific parameters.
// popular and now_playing ignore genre, year and text.
func request(q core.FetchQuery) (string, url.Values, error) {
	params := url.Values{}
	switch q.Endpoint {
	case core.EndpointPopular, "":
		return "/movie/popular", params, nil

	case core.EndpointNowPlaying:
		return "/movie/now_playing", params, nil

	case core.EndpointDiscover:
		if q.GenreID <= 0 {
			return "", nil, fmt.Errorf("%w: discover requires a genre id", ErrInvalidQuery)
		}
		params.Set("with_genres", strconv.Itoa(q.GenreID))
		params.Set("sort_by", "popularity.desc")
		if q.Year > 0 {
			params.Set("primary_release_year", strconv.Itoa(q.Year))
		}
		return "/discover/movie", params, nil

	case core.EndpointSearch:
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return "", nil, fmt.Errorf("%w: search requires a non-empty query", ErrInvalidQuery)
		}
		params.Set("query", text)
		if q.Year > 0 {
			params.Set("year", strconv.Itoa(q.Year))
		}
		return "/search/movie", params, nil
	}
	return "", nil, fmt.Errorf("%w: unknown endpoint %q", ErrInvalidQuery, q.Endpoint)
}

// pageNumber normalizes a 1-indexed page number.
func pageNumber(p int) int {
	if p < 1 {
		return 1
	}
	return p
}

// cacheKey identifies a request by everything that reaches the wire.
// Client-side filters (language, rating) are not part of it.
func cacheKey(apiKey, path string, params url.Values) string {
	return apiKey + "|" + path + "?" + params.Encode()
}
