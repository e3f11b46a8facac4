package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltpay/voltcli/internal/store"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := store.NewFileStore(path)

	_, ok := s.Get("account")
	assert.False(t, ok)

	require.NoError(t, s.Put("account", "0xAAA"))

	v, ok := s.Get("account")
	require.True(t, ok)
	assert.Equal(t, "0xAAA", v)
}

func TestFileStorePreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := store.NewFileStore(path)

	require.NoError(t, s.Put("account", "0xAAA"))
	require.NoError(t, s.Put("other", "value"))

	v, ok := s.Get("account")
	require.True(t, ok)
	assert.Equal(t, "0xAAA", v)
}

func TestFileStoreOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := store.NewFileStore(path)

	require.NoError(t, s.Put("account", "0xAAA"))
	require.NoError(t, s.Put("account", "0xBBB"))

	v, _ := s.Get("account")
	assert.Equal(t, "0xBBB", v)
}

func TestFileStoreCorruptFileDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	s := store.NewFileStore(path)
	_, ok := s.Get("account")
	assert.False(t, ok)

	// Put repairs the file.
	require.NoError(t, s.Put("account", "0xAAA"))
	v, ok := s.Get("account")
	require.True(t, ok)
	assert.Equal(t, "0xAAA", v)
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := store.NewFileStore(path)
	require.NoError(t, s.Put("account", "0xAAA"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestMemStore(t *testing.T) {
	s := store.NewMemStore()
	require.NoError(t, s.Put("k", "v"))
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}
