package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_PutGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSQLite(t)

	rec := testRecord("Ромашка", "Москва")
	require.NoError(t, s.Put(ctx, "ромашка_москва", rec))

	got, ok, err := s.Get(ctx, "ромашка_москва")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ромашка", got.CompanyName)
	assert.True(t, got.Found)

	_, ok, err = s.Get(ctx, "нет_такой")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_PutOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.Put(ctx, "k", testRecord("Старая", "Москва")))
	require.NoError(t, s.Put(ctx, "k", testRecord("Новая", "Москва")))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Новая", got.CompanyName)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_ClearAndLen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.Put(ctx, "a", testRecord("А", "Москва")))
	require.NoError(t, s.Put(ctx, "b", testRecord("Б", "Казань")))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Clear(ctx))
	n, err = s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
