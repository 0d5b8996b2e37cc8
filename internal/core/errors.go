package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by every component.
var (
	// ErrNetwork means no server was reached.
	ErrNetwork = errors.New("network error")
	// ErrAPI means the server answered with a failure.
	ErrAPI = errors.New("api error")
	// ErrAuth means the API key is missing or rejected, or a credential check failed.
	ErrAuth = errors.New("authentication error")
	// ErrParse means persisted data could not be decoded.
	ErrParse = errors.New("parse error")
	// ErrNotFound means a local record does not exist.
	ErrNotFound = errors.New("record not found")
)

// APIError is a non-success response from the catalog API.
type APIError struct {
	StatusCode int    // HTTP status
	Code       int    // catalog status_code, 0 when absent
	Message    string // catalog status_message or raw body
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog API error %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog API error %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match ErrAPI, and ErrAuth for rejected keys.
func (e *APIError) Unwrap() []error {
	if e.StatusCode == http.StatusUnauthorized {
		return []error{ErrAPI, ErrAuth}
	}
	return []error{ErrAPI}
}
