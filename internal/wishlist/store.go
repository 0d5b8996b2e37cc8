// Package wishlist keeps the user's saved movies and the filter/sort
// policy used to present them.
package wishlist

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

// RecordKey is the record the wishlist is persisted under.
const RecordKey = "wishlist"

// Store is an ordered set of catalog items keyed by ID.
// Every mutation is persisted before it returns.
type Store struct {
	records core.RecordStore
	logger  *slog.Logger

	mu    sync.RWMutex
	items []core.CatalogItem
}

// Open loads the wishlist from records. A missing or unreadable record
// yields an empty wishlist.
func Open(records core.RecordStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{records: records, logger: logger}

	var saved []core.CatalogItem
	err := records.Load(RecordKey, &saved)
	switch {
	case err == nil:
		s.items = dedupe(saved)
	case errors.Is(err, core.ErrNotFound):
	default:
		logger.Warn("wishlist record unreadable, starting empty", slog.String("error", err.Error()))
	}
	return s
}

// dedupe keeps the first occurrence of every ID.
func dedupe(items []core.CatalogItem) []core.CatalogItem {
	seen := make(map[int]struct{}, len(items))
	out := make([]core.CatalogItem, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.items, func(it core.CatalogItem) bool { return it.ID == id })
}

// Toggle removes item if an entry with its ID is present, otherwise
// appends it. It reports whether the item was added. When the write
// fails the wishlist is left as it was.
func (s *Store) Toggle(item core.CatalogItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, added, err := s.flip(item)
	return added, err
}

// ToggleFunc flips the entry for id. A present entry is removed; otherwise
// resolve supplies the full item to append. resolve runs without the lock
// held and is not called for a removal. The entry that was removed or added
// is returned along with whether it was added.
func (s *Store) ToggleFunc(id int, resolve func() (core.CatalogItem, error)) (core.CatalogItem, bool, error) {
	s.mu.Lock()
	if s.indexOf(id) >= 0 {
		defer s.mu.Unlock()
		return s.flip(core.CatalogItem{ID: id})
	}
	s.mu.Unlock()

	item, err := resolve()
	if err != nil {
		return core.CatalogItem{}, false, err
	}
	if item.ID != id {
		return core.CatalogItem{}, false, fmt.Errorf("resolved movie %d for wishlist id %d", item.ID, id)
	}

	// Another toggle may have added id while resolve ran; flip re-checks.
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flip(item)
}

// flip toggles item.ID and persists the result. Callers hold s.mu.
func (s *Store) flip(item core.CatalogItem) (core.CatalogItem, bool, error) {
	prev := s.items
	var next []core.CatalogItem
	entry := item
	added := false
	if i := s.indexOf(item.ID); i >= 0 {
		entry = prev[i]
		next = slices.Delete(slices.Clone(prev), i, i+1)
	} else {
		next = append(slices.Clone(prev), item)
		added = true
	}

	if err := s.records.Save(RecordKey, next); err != nil {
		return core.CatalogItem{}, false, fmt.Errorf("save wishlist: %w", err)
	}
	s.items = next

	s.logger.Debug("wishlist toggled", slog.Int("id", item.ID), slog.Bool("added", added))
	return entry, added, nil
}

// Contains reports whether an entry with id is present.
func (s *Store) Contains(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// List returns the entries in insertion order.
func (s *Store) List() []core.CatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.records.Save(RecordKey, []core.CatalogItem{}); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	s.items = nil
	return nil
}
