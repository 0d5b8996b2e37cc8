package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CatalogItem represents a single movie as returned by the catalog.
// Items are never mutated after they are fetched.
type CatalogItem struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	OriginalLanguage string  `json:"original_language"`
	GenreIDs         []int   `json:"genre_ids"`
}

// Year returns the release year, or 0 when the release date is unknown.
func (c CatalogItem) Year() int {
	if len(c.ReleaseDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(c.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// Released parses the release date. ok is false for missing or malformed dates.
func (c CatalogItem) Released() (t time.Time, ok bool) {
	t, err := time.Parse(time.DateOnly, c.ReleaseDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MovieDetails represents detailed movie information.
type MovieDetails struct {
	CatalogItem
	Runtime int     `json:"runtime"`
	Status  string  `json:"status"`
	Tagline string  `json:"tagline"`
	IMDbID  string  `json:"imdb_id"`
	Genres  []Genre `json:"genres"`
	Videos  struct {
		Results []Video `json:"results"`
	} `json:"videos"`
	Credits struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`
}

// Item returns the catalog item view of the details, filling GenreIDs
// from the expanded genre list.
func (d *MovieDetails) Item() CatalogItem {
	item := d.CatalogItem
	if len(item.GenreIDs) == 0 && len(d.Genres) > 0 {
		item.GenreIDs = make([]int, 0, len(d.Genres))
		for _, g := range d.Genres {
			item.GenreIDs = append(item.GenreIDs, g.ID)
		}
	}
	return item
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Video represents a trailer or clip attached to a movie.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// CastMember represents one credited actor.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

// Page is one page of catalog results.
type Page struct {
	Number       int
	TotalPages   int
	TotalResults int
	Items        []CatalogItem
}

// EndpointKind selects the remote query shape.
type EndpointKind string

// Endpoint kinds.
const (
	EndpointPopular    EndpointKind = "popular"
	EndpointNowPlaying EndpointKind = "now_playing"
	EndpointDiscover   EndpointKind = "discover"
	EndpointSearch     EndpointKind = "search"
)

// ParseEndpointKind accepts the canonical names plus a few spellings used on the command line.
func ParseEndpointKind(s string) (EndpointKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "popular", "":
		return EndpointPopular, nil
	case "now_playing", "now-playing", "nowplaying":
		return EndpointNowPlaying, nil
	case "discover", "genre":
		return EndpointDiscover, nil
	case "search":
		return EndpointSearch, nil
	}
	return "", fmt.Errorf("unknown endpoint %q", s)
}

// LanguageAll disables the original-language filter.
const LanguageAll = "all"

// FetchQuery describes one catalog request. It is a comparable value.
type FetchQuery struct {
	Endpoint EndpointKind
	GenreID  int
	Year     int
	Text     string
	Language string // original-language filter, LanguageAll or "" keeps everything
	Rating   RatingBucket
	Page     int
}

// SameQuery reports whether a and b differ only in their page number.
func SameQuery(a, b FetchQuery) bool {
	a.Page, b.Page = 0, 0
	return a == b
}

// Session is the signed-in user as seen by the rest of the application.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	APIKey    string    `json:"api_key"`
	StartedAt time.Time `json:"started_at"`
}
