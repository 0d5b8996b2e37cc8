package wishlist

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/storage"
)

var errDiskFull = errors.New("disk full")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func memRecords(t *testing.T) (*storage.Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	return storage.New(fsys, "/data", discardLogger()), fsys
}

// failingRecords accepts loads and rejects every save.
type failingRecords struct{}

func (failingRecords) Load(string, any) error { return core.ErrNotFound }
func (failingRecords) Save(string, any) error { return errDiskFull }
func (failingRecords) Delete(string) error    { return nil }

func TestToggleScenario(t *testing.T) {
	records, _ := memRecords(t)
	s := Open(records, discardLogger())

	added, err := s.Toggle(core.CatalogItem{ID: 42, Title: "Answer"})
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, s.Contains(42))
	require.Len(t, s.List(), 1)
	assert.Equal(t, 42, s.List()[0].ID)

	reopened := Open(records, discardLogger())
	assert.True(t, reopened.Contains(42), "toggle must be persisted")

	added, err = s.Toggle(core.CatalogItem{ID: 42})
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, s.Contains(42))
	assert.Empty(t, s.List())

	assert.Equal(t, 0, Open(records, discardLogger()).Len())
}

func TestToggleParity(t *testing.T) {
	records, _ := memRecords(t)
	s := Open(records, discardLogger())
	item := core.CatalogItem{ID: 7}

	for n := 1; n <= 5; n++ {
		_, err := s.Toggle(item)
		require.NoError(t, err)
		assert.Equal(t, n%2 == 1, s.Contains(7), "after %d toggles", n)
	}
}

func TestToggleReaddAppendsAtEnd(t *testing.T) {
	records, _ := memRecords(t)
	s := Open(records, discardLogger())

	for _, id := range []int{1, 2, 3} {
		_, err := s.Toggle(core.CatalogItem{ID: id})
		require.NoError(t, err)
	}
	_, err := s.Toggle(core.CatalogItem{ID: 1})
	require.NoError(t, err)
	_, err = s.Toggle(core.CatalogItem{ID: 1})
	require.NoError(t, err)

	var got []int
	for _, it := range s.List() {
		got = append(got, it.ID)
	}
	assert.Equal(t, []int{2, 3, 1}, got)
}

func TestToggleUsesIDOnly(t *testing.T) {
	records, _ := memRecords(t)
	s := Open(records, discardLogger())

	_, err := s.Toggle(core.CatalogItem{ID: 5, Title: "Original"})
	require.NoError(t, err)
	added, err := s.Toggle(core.CatalogItem{ID: 5, Title: "Retitled"})
	require.NoError(t, err)

	assert.False(t, added, "same id with other fields still removes")
	assert.Equal(t, 0, s.Len())
}

func TestToggleRollsBackOnSaveFailure(t *testing.T) {
	s := Open(failingRecords{}, discardLogger())

	added, err := s.Toggle(core.CatalogItem{ID: 42})
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, added)
	assert.False(t, s.Contains(42))
	assert.Equal(t, 0, s.Len())
}

func TestOpenMalformedRecord(t *testing.T) {
	records, fsys := memRecords(t)
	require.NoError(t, afero.WriteFile(fsys, "/data/wishlist.json", []byte(`[{"id": "oops"`), 0o600))

	s := Open(records, discardLogger())
	assert.Equal(t, 0, s.Len())

	_, err := s.Toggle(core.CatalogItem{ID: 1})
	require.NoError(t, err, "store stays usable after a bad record")
	assert.Equal(t, 1, Open(records, discardLogger()).Len())
}

func TestOpenDropsDuplicateIDs(t *testing.T) {
	records, fsys := memRecords(t)
	require.NoError(t, afero.WriteFile(fsys, "/data/wishlist.json",
		[]byte(`[{"id": 1, "title": "a"}, {"id": 2}, {"id": 1, "title": "b"}]`), 0o600))

	s := Open(records, discardLogger())
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Title)
}

func TestClear(t *testing.T) {
	records, _ := memRecords(t)
	s := Open(records, discardLogger())

	for _, id := range []int{1, 2} {
		_, err := s.Toggle(core.CatalogItem{ID: id})
		require.NoError(t, err)
	}
	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, Open(records, discardLogger()).Len())
}

func TestListIsACopy(t *testing.T) {
	records, _ := memRecords(t)
	s := Open(records, discardLogger())
	_, err := s.Toggle(core.CatalogItem{ID: 1, Title: "keep"})
	require.NoError(t, err)

	list := s.List()
	list[0].Title = "mutated"

	assert.Equal(t, "keep", s.List()[0].Title)
}

func TestToggleFuncRemovalSkipsResolve(t *testing.T) {
	records, _ := memRecords(t)
	s := Open(records, discardLogger())
	_, err := s.Toggle(core.CatalogItem{ID: 7, Title: "Heat"})
	require.NoError(t, err)

	entry, added, err := s.ToggleFunc(7, func() (core.CatalogItem, error) {
		t.Fatal("resolve called for a removal")
		return core.CatalogItem{}, nil
	})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, "Heat", entry.Title)
	assert.Zero(t, s.Len())
}

func TestToggleFuncResolveError(t *testing.T) {
	records, _ := memRecords(t)
	s := Open(records, discardLogger())

	_, _, err := s.ToggleFunc(7, func() (core.CatalogItem, error) {
		return core.CatalogItem{}, core.ErrNetwork
	})
	require.ErrorIs(t, err, core.ErrNetwork)
	assert.Zero(t, s.Len())

	_, _, err = s.ToggleFunc(7, func() (core.CatalogItem, error) {
		return core.CatalogItem{ID: 8}, nil
	})
	require.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestToggleFuncConcurrentFlipsKeepFullEntries(t *testing.T) {
	records, _ := memRecords(t)
	s := Open(records, discardLogger())
	heat := core.CatalogItem{ID: 7, Title: "Heat", ReleaseDate: "1995-12-15", VoteAverage: 7.9}
	_, err := s.Toggle(heat)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.ToggleFunc(7, func() (core.CatalogItem, error) { return heat, nil })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Two flips of a saved entry: removed, then added back in full.
	assert.Equal(t, []core.CatalogItem{heat}, s.List())
}
