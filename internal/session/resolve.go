package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

// ResolveAPIKey picks the key catalog requests are made with: the current
// session's key, else fallback. With neither it returns an error matching
// core.ErrAuth. The session is nil when fallback was used.
func ResolveAPIKey(ctx context.Context, ids core.IdentityProvider, fallback string) (string, *core.Session, error) {
	sess, err := ids.Current(ctx)
	switch {
	case err == nil:
		return sess.APIKey, sess, nil
	case !errors.Is(err, core.ErrAuth):
		return "", nil, err
	}
	if fallback != "" {
		return fallback, nil, nil
	}
	return "", nil, fmt.Errorf("%w: sign in with `cinegrid login` or set tmdb.api_key", core.ErrAuth)
}
