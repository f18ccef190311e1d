package catalog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	assert.Equal(t, "catalog.db", filepath.Base(store.Path()))
	assert.FileExists(t, store.Path())
}

func TestStore_RecordAndGet(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &Conversion{
		ID:        "run-1",
		Input:     "model.yaml",
		Digest:    "abc",
		ModelName: "house",
		Algorithm: "LinearRegression",
		Function:  "regression",
		Fields:    []string{"width", "height", "price"},
		Status:    StatusOK,
		Duration:  1500 * time.Millisecond,
		CreatedAt: created,
	}
	require.NoError(t, store.Record(c))

	got, err := store.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, c.Input, got.Input)
	assert.Equal(t, c.Fields, got.Fields)
	assert.Equal(t, StatusOK, got.Status)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Empty(t, got.Error)

	_, err = store.Get("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_RecordRequiresID(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	assert.Error(t, store.Record(&Conversion{Input: "x", Status: StatusOK}))
}

func TestStore_Recent(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		c := &Conversion{
			ID:        id,
			Input:     id + ".yaml",
			Digest:    id,
			Status:    StatusOK,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if id == "b" {
			c.Status = StatusFailed
			c.ErrorKind = "arity"
		}
		require.NoError(t, store.Record(c))
	}

	recent, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
	assert.Equal(t, "arity", recent[1].ErrorKind)
	assert.Nil(t, recent[1].Fields)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusOK: 2, StatusFailed: 1}, stats)
}
