package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "lockers_data.json"))
	ctx := context.Background()

	_, found, err := fs.Load(ctx, "lockers_data")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, fs.Save(ctx, "lockers_data", []byte(`[{"id":"u1"}]`)))

	blob, found, err := fs.Load(ctx, "lockers_data")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"u1"}]`, string(blob))

	// Overwrite wins.
	require.NoError(t, fs.Save(ctx, "lockers_data", []byte(`[]`)))
	blob, _, err = fs.Load(ctx, "lockers_data")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(blob))
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "nested", "deeper", "lockers_data.json"))

	require.NoError(t, fs.Save(context.Background(), "lockers_data", []byte("[]")))
	blob, found, err := fs.Load(context.Background(), "lockers_data")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(blob))
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	original := []byte(`[1,2,3]`)
	require.NoError(t, ms.Save(ctx, "k", original))
	original[0] = 'X'

	blob, found, err := ms.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `[1,2,3]`, string(blob))
}
