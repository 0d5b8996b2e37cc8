// Package session provides the local identity provider: accounts keyed
// by email whose credential is the user's TMDb API key.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

// Record keys.
const (
	UsersKey   = "users"
	SessionKey = "session"
)

var (
	ErrEmailRequired  = errors.New("email is required")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrAPIKeyRequired = errors.New("API key is required")
	ErrUserExists     = errors.New("user already exists")
	// ErrInvalidCredentials matches core.ErrAuth.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or API key", core.ErrAuth)
	// ErrNoSession matches core.ErrAuth.
	ErrNoSession = fmt.Errorf("%w: not signed in", core.ErrAuth)
)

// account is the persisted form of a registered user.
type account struct {
	Email     string    `json:"email"`
	KeyHash   string    `json:"key_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Local implements core.IdentityProvider on a record store.
type Local struct {
	records core.RecordStore
	logger  *slog.Logger
	cost    int
	now     func() time.Time

	mu sync.Mutex
}

var _ core.IdentityProvider = (*Local)(nil)

// NewLocal creates a local identity provider.
func NewLocal(records core.RecordStore, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{
		records: records,
		logger:  logger,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return email, nil
}

// loadAccounts returns the stored accounts. An unreadable record counts as empty.
func (l *Local) loadAccounts() ([]account, error) {
	var accounts []account
	err := l.records.Load(UsersKey, &accounts)
	switch {
	case err == nil:
		return accounts, nil
	case errors.Is(err, core.ErrNotFound):
		return nil, nil
	case errors.Is(err, core.ErrParse):
		l.logger.Warn("users record unreadable, treating as empty", slog.String("error", err.Error()))
		return nil, nil
	}
	return nil, fmt.Errorf("load users: %w", err)
}

// Register creates an account for email with apiKey as its credential.
func (l *Local) Register(_ context.Context, email, apiKey string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrAPIKeyRequired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	accounts, err := l.loadAccounts()
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.Email == email {
			return ErrUserExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), l.cost)
	if err != nil {
		return fmt.Errorf("hash API key: %w", err)
	}
	accounts = append(accounts, account{Email: email, KeyHash: string(hash), CreatedAt: l.now().UTC()})
	if err := l.records.Save(UsersKey, accounts); err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	l.logger.Info("user registered", slog.String("email", email))
	return nil
}

// Login verifies the credentials and makes the user the current session.
func (l *Local) Login(_ context.Context, email, apiKey string) (*core.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	apiKey = strings.TrimSpace(apiKey)

	l.mu.Lock()
	defer l.mu.Unlock()

	accounts, err := l.loadAccounts()
	if err != nil {
		return nil, err
	}

	var found *account
	for i := range accounts {
		if accounts[i].Email == email {
			found = &accounts[i]
			break
		}
	}
	if found == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.KeyHash), []byte(apiKey)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess := &core.Session{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      displayName(email),
		APIKey:    apiKey,
		StartedAt: l.now().UTC(),
	}
	if err := l.records.Save(SessionKey, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	l.logger.Info("user signed in", slog.String("email", email), slog.String("session", sess.ID))
	return sess, nil
}

// Logout ends the current session, if any.
func (l *Local) Logout(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.records.Delete(SessionKey); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Current returns the signed-in session or ErrNoSession.
func (l *Local) Current(_ context.Context) (*core.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var sess core.Session
	err := l.records.Load(SessionKey, &sess)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil, ErrNoSession
	case errors.Is(err, core.ErrParse):
		l.logger.Warn("session record unreadable", slog.String("error", err.Error()))
		return nil, ErrNoSession
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.APIKey == "" {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// displayName is the local part of an email address.
func displayName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
