package core

import "context"

// CatalogSource defines the interface for remote movie catalogs (TMDb)
type CatalogSource interface {
	// FetchPage fetches one page of results for the query
	FetchPage(ctx context.Context, q FetchQuery) (Page, error)

	// Details fetches full details for a single catalog item
	Details(ctx context.Context, id int) (*MovieDetails, error)

	// Genres lists the genres known to the catalog
	Genres(ctx context.Context) ([]Genre, error)
}

// RecordStore defines the interface for durable local storage.
// Each record is a single JSON document addressed by key.
type RecordStore interface {
	// Load decodes the record into v. Returns ErrNotFound when absent
	// and an error matching ErrParse when the stored data is malformed.
	Load(key string, v any) error

	// Save replaces the record with the JSON encoding of v
	Save(key string, v any) error

	// Delete removes the record; deleting an absent record is not an error
	Delete(key string) error
}

// IdentityProvider defines the interface for the identity collaborator
// that owns accounts and the current session.
type IdentityProvider interface {
	// Register creates an account bound to an API key
	Register(ctx context.Context, email, apiKey string) error

	// Login verifies credentials and starts a session
	Login(ctx context.Context, email, apiKey string) (*Session, error)

	// Logout ends the current session
	Logout(ctx context.Context) error

	// Current returns the active session or an error matching ErrAuth
	Current(ctx context.Context) (*Session, error)
}
