package catalog

import "github.com/vadimtrunov/cinegrid/internal/core"

// pageResponse is the paginated list/search/discover response.
type pageResponse struct {
	Page         int                `json:"page"`
	Results      []core.CatalogItem `json:"results"`
	TotalPages   int                `json:"total_pages"`
	TotalResults int                `json:"total_results"`
}

// genreListResponse wraps /genre/movie/list.
type genreListResponse struct {
	Genres []core.Genre `json:"genres"`
}

// errorResponse is the error body TMDb sends with non-2xx statuses.
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
