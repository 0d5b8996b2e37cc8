package storage

import (
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newMemStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	return New(fsys, "/data", slog.New(slog.NewTextHandler(io.Discard, nil))), fsys
}

func TestSaveLoad(t *testing.T) {
	s, fsys := newMemStore(t)

	require.NoError(t, s.Save("wishlist", record{Name: "a", Count: 2}))

	var got record
	require.NoError(t, s.Load("wishlist", &got))
	assert.Equal(t, record{Name: "a", Count: 2}, got)

	exists, err := afero.Exists(fsys, "/data/wishlist.json")
	require.NoError(t, err)
	assert.True(t, exists)

	tmpExists, err := afero.Exists(fsys, "/data/wishlist.json.tmp")
	require.NoError(t, err)
	assert.False(t, tmpExists, "temp file must be renamed away")
}

func TestSaveReplaces(t *testing.T) {
	s, _ := newMemStore(t)

	require.NoError(t, s.Save("session", record{Name: "first"}))
	require.NoError(t, s.Save("session", record{Name: "second"}))

	var got record
	require.NoError(t, s.Load("session", &got))
	assert.Equal(t, "second", got.Name)
}

func TestLoadMissing(t *testing.T) {
	s, _ := newMemStore(t)

	var got record
	err := s.Load("users", &got)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestLoadMalformed(t *testing.T) {
	s, fsys := newMemStore(t)
	require.NoError(t, afero.WriteFile(fsys, "/data/wishlist.json", []byte("{not json"), 0o600))

	var got record
	err := s.Load("wishlist", &got)
	require.ErrorIs(t, err, core.ErrParse)
	assert.NotErrorIs(t, err, core.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s, _ := newMemStore(t)

	require.NoError(t, s.Save("session", record{Name: "x"}))
	require.NoError(t, s.Delete("session"))
	require.NoError(t, s.Delete("session"), "deleting twice is fine")

	var got record
	require.ErrorIs(t, s.Load("session", &got), core.ErrNotFound)
}

func TestInvalidKeys(t *testing.T) {
	s, _ := newMemStore(t)

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		assert.ErrorIs(t, s.Save(key, record{}), ErrInvalidKey, "key %q", key)
		assert.ErrorIs(t, s.Load(key, &record{}), ErrInvalidKey, "key %q", key)
	}
}

func TestSaveReadOnly(t *testing.T) {
	s := New(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/data", nil)

	err := s.Save("wishlist", record{})
	require.Error(t, err)
}

func TestOSStore(t *testing.T) {
	s := NewOS(t.TempDir(), nil)

	require.NoError(t, s.Save("users", []record{{Name: "u"}}))
	var got []record
	require.NoError(t, s.Load("users", &got))
	assert.Equal(t, []record{{Name: "u"}}, got)
}
