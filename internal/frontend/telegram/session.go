package telegram

import (
	"sync"

	"github.com/vadimtrunov/cinegrid/internal/accumulator"
)

// LoaderFactory creates the page loader backing one chat.
type LoaderFactory func() *accumulator.Loader

// sessionManager manages per-chat listings and access control.
type sessionManager struct {
	mu      sync.Mutex
	loaders map[int64]*accumulator.Loader
	allowed map[int64]bool // nil or empty = allow all
}

// newSessionManager creates a session manager.
// If allowedUserIDs is empty, all users are allowed.
func newSessionManager(allowedUserIDs []int64) *sessionManager {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &sessionManager{
		loaders: make(map[int64]*accumulator.Loader),
		allowed: allowed,
	}
}

// isAllowed checks if a user is authorized to use the bot.
func (sm *sessionManager) isAllowed(userID int64) bool {
	if len(sm.allowed) == 0 {
		return true
	}
	return sm.allowed[userID]
}

// getOrCreate returns the chat's loader, creating one with factory on first use.
func (sm *sessionManager) getOrCreate(chatID int64, factory LoaderFactory) *accumulator.Loader {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if l, ok := sm.loaders[chatID]; ok {
		return l
	}
	l := factory()
	sm.loaders[chatID] = l
	return l
}

// get returns the chat's loader, if any.
func (sm *sessionManager) get(chatID int64) (*accumulator.Loader, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	l, ok := sm.loaders[chatID]
	return l, ok
}

// reset forgets a chat's listing.
func (sm *sessionManager) reset(chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.loaders, chatID)
}
