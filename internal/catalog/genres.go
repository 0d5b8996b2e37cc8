package catalog

import (
	"strconv"
	"strings"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

// KnownGenres are the genres offered as filter options without a round trip.
var KnownGenres = []core.Genre{
	{ID: 28, Name: "Action"},
	{ID: 12, Name: "Adventure"},
	{ID: 35, Name: "Comedy"},
	{ID: 80, Name: "Crime"},
	{ID: 10751, Name: "Family"},
	{ID: 27, Name: "Horror"},
	{ID: 10749, Name: "Romance"},
	{ID: 878, Name: "SF"},
}

// LookupGenre resolves a numeric ID or a known genre name (case-insensitive).
// Unknown numeric IDs are accepted with an empty name.
func LookupGenre(s string) (core.Genre, bool) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		if id <= 0 {
			return core.Genre{}, false
		}
		for _, g := range KnownGenres {
			if g.ID == id {
				return g, true
			}
		}
		return core.Genre{ID: id}, true
	}
	for _, g := range KnownGenres {
		if strings.EqualFold(g.Name, s) {
			return g, true
		}
	}
	return core.Genre{}, false
}
