package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*SnapshotRepository, *sql.DB) {
	t.Helper()
	db, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSnapshotRepository(db), db
}

func TestSnapshotRepo_GetAbsent(t *testing.T) {
	r, _ := setupRepo(t)

	value, seq, err := r.Get(context.Background(), RootKey)
	require.NoError(t, err)
	require.Nil(t, value)
	require.Equal(t, uint64(0), seq)
}

func TestSnapshotRepo_SetGet(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, RootKey, []byte("blob-1"), 7))

	value, seq, err := r.Get(ctx, RootKey)
	require.NoError(t, err)
	require.Equal(t, []byte("blob-1"), value)
	require.Equal(t, uint64(7), seq)
}

func TestSnapshotRepo_SetUpserts(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, RootKey, []byte("blob-1"), 7))
	require.NoError(t, r.Set(ctx, RootKey, []byte("blob-2"), 9))

	value, seq, err := r.Get(ctx, RootKey)
	require.NoError(t, err)
	require.Equal(t, []byte("blob-2"), value)
	require.Equal(t, uint64(9), seq)
}

func TestSnapshotRepo_Delete(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, RootKey, []byte("blob-1"), 1))
	require.NoError(t, r.Delete(ctx, RootKey))

	value, _, err := r.Get(ctx, RootKey)
	require.NoError(t, err)
	require.Nil(t, value)

	// deleting an absent row is not an error
	require.NoError(t, r.Delete(ctx, RootKey))
}
