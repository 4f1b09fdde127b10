package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/overflowhosting/lockscreen/internal/dbx"
)

// SnapshotRepository stores encrypted snapshot blobs in the snapshots
// table. Presence or absence of a row is itself meaningful: an absent
// root row means a fresh install.
type SnapshotRepository struct {
	db dbx.DBTX
}

func NewSnapshotRepository(db dbx.DBTX) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Get returns the blob and write sequence for key, or (nil, 0, nil)
// when the row is absent.
func (r *SnapshotRepository) Get(ctx context.Context, key string) ([]byte, uint64, error) {
	var value []byte
	var seq uint64
	err := r.db.QueryRowContext(ctx, `SELECT value, seq FROM snapshots WHERE key = ?`, key).Scan(&value, &seq)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get snapshot[%s]: %w", key, err)
	}
	return value, seq, nil
}

// Set upserts the blob for key, recording the store sequence number
// that produced it.
func (r *SnapshotRepository) Set(ctx context.Context, key string, value []byte, seq uint64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, value, seq, updated_at) VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, seq = excluded.seq, updated_at = excluded.updated_at
	`, key, value, seq)
	if err != nil {
		return fmt.Errorf("failed to set snapshot[%s]: %w", key, err)
	}
	return nil
}

// Delete removes the row for key.
func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot[%s]: %w", key, err)
	}
	return nil
}
