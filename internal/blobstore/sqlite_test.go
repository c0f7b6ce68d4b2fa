package blobstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func blobStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("MissingKeyIsNil", func(t *testing.T) {
		blob, err := s.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, blob)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "records", []byte(`{"a":1}`)))

		blob, err := s.Get(ctx, "records")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":1}`), blob)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "records", []byte("v1")))
		require.NoError(t, s.Set(ctx, "records", []byte("v2")))

		blob, err := s.Get(ctx, "records")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), blob)
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "a", []byte("1")))
		require.NoError(t, s.Set(ctx, "b", []byte("2")))

		blob, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), blob)
	})
}

func TestSQLiteStore(t *testing.T) {
	blobStoreSuite(t, newTestSQLite(t))
}

func TestMemoryStore(t *testing.T) {
	blobStoreSuite(t, NewMemory())
}
