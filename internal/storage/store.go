// Package storage persists small JSON records, one file per record key,
// inside the application data directory.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

// ErrInvalidKey is returned for keys that cannot name a record file.
var ErrInvalidKey = errors.New("invalid record key")

// Store is a core.RecordStore over an afero filesystem.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger

	mu sync.Mutex
}

var _ core.RecordStore = (*Store)(nil)

// New creates a store rooted at dir on fsys.
func New(fsys afero.Fs, dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{fs: fsys, dir: dir, logger: logger}
}

// NewOS creates a store on the local filesystem.
func NewOS(dir string, logger *slog.Logger) *Store {
	return New(afero.NewOsFs(), dir, logger)
}

// Dir returns the directory records are written to.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Load decodes the record stored under key into v. It returns an error
// matching core.ErrNotFound when the record does not exist and one
// matching core.ErrParse when it cannot be decoded.
func (s *Store) Load(key string, v any) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	data, err := afero.ReadFile(s.fs, p)
	s.mu.Unlock()

	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("record %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read record %q: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: record %q: %w", core.ErrParse, key, err)
	}
	return nil
}

// Save encodes v and replaces the record under key. The new content is
// written to a temp file first and renamed into place.
func (s *Store) Save(key string, v any) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp := p + ".tmp"
	file, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", key, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write record %q: %w", key, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync record %q: %w", key, err)
	}
	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close record %q: %w", key, err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace record %q: %w", key, err)
	}

	s.logger.Debug("record saved", slog.String("key", key), slog.Int("bytes", len(data)))
	return nil
}

// Delete removes the record under key. Deleting a missing record is not an error.
func (s *Store) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete record %q: %w", key, err)
	}
	return nil
}
