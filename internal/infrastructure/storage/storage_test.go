package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created")
}

func TestStoreOpenCreatesParentDirs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deeper", "test.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestStorePutAndLoad(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put("default", `{"version":1,"hp":3}`))

	blob, ok, err := store.Load("default")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"version":1,"hp":3}`, blob)
}

func TestStoreLoadEmptySlot(t *testing.T) {
	store := openTestStore(t)

	blob, ok, err := store.Load("nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, blob)
}

func TestStorePutOverwrites(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put("default", "first"))
	require.NoError(t, store.Put("default", "second"))

	blob, ok, err := store.Load("default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", blob)

	entries, err := store.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1, "overwrite must not add a second row")
}

func TestStoreClear(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put("default", "blob"))
	require.NoError(t, store.Clear("default"))

	_, ok, err := store.Load("default")
	require.NoError(t, err)
	assert.False(t, ok)

	// clearing again is fine
	assert.NoError(t, store.Clear("default"))
}

func TestStoreList(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Put("alpha", "a"))
	require.NoError(t, store.Put("beta", "b"))

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	slots := []string{entries[0].Slot, entries[1].Slot}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, slots)
	for _, e := range entries {
		assert.False(t, e.UpdatedAt.IsZero(), "updated_at not populated for %s", e.Slot)
	}
}

func TestStoreListEmpty(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Put("default", "progress"))
	require.NoError(t, store.Close())

	store, err = Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	blob, ok, err := store.Load("default")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "progress", blob)
}
