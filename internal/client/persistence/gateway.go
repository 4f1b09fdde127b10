// Package persistence owns the encrypted on-disk copy of the session
// and lock state. The in-memory store is authoritative; the two are
// reconciled only at rehydration (disk to memory) and after every
// committed mutation (memory to disk).
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/overflowhosting/lockscreen/internal/client/session"
	"github.com/overflowhosting/lockscreen/internal/common"
	"github.com/overflowhosting/lockscreen/internal/cryptox"
	"github.com/overflowhosting/lockscreen/internal/dbx"
	"github.com/overflowhosting/lockscreen/internal/logging"
)

// RootKey is the logical key of the single snapshot record.
const RootKey = "root"

// Snapshot is the persisted portion of the store state. The auth
// request state is transient and never written to disk.
type Snapshot struct {
	User session.UserSession `json:"user"`
	Lock session.LockStatus  `json:"lock"`
}

type queuedWrite struct {
	seq  uint64
	snap Snapshot
}

// Gateway encrypts and persists store snapshots and rehydrates the
// store on cold start. Writes are serialized: one write in flight, the
// newest committed state wins, ordered by the store sequence number so
// a slow early write can never clobber a later state.
type Gateway struct {
	db     *sql.DB
	key    []byte
	logger logging.Logger

	ready chan struct{}

	mu      sync.Mutex
	pending *queuedWrite
	notify  chan struct{}

	lastWritten uint64

	clock func() time.Time // test seam
}

func NewGateway(db *sql.DB, key []byte, logger logging.Logger) *Gateway {
	return &Gateway{
		db:     db,
		key:    key,
		logger: logger.With("component", "persistence"),
		ready:  make(chan struct{}),
		notify: make(chan struct{}, 1),
		clock:  time.Now,
	}
}

// Load reads and decrypts the persisted snapshot. An absent record
// returns (nil, nil); read and decryption failures return a
// common.ErrStorage so the caller can decide to degrade.
func (g *Gateway) Load(ctx context.Context) (*Snapshot, error) {
	blob, _, err := NewSnapshotRepository(g.db).Get(ctx, RootKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	if blob == nil {
		return nil, nil
	}

	var snap Snapshot
	if err := cryptox.Open(blob, g.key, &snap); err != nil {
		return nil, fmt.Errorf("%w: decrypt snapshot: %v", common.ErrStorage, err)
	}
	return &snap, nil
}

// Save encrypts and writes one snapshot in a single transaction.
// Normally driven by the write loop; exported so restart tests can
// write deterministically.
func (g *Gateway) Save(ctx context.Context, seq uint64, snap Snapshot) error {
	blob, err := cryptox.Seal(snap, g.key)
	if err != nil {
		return fmt.Errorf("%w: encrypt snapshot: %v", common.ErrStorage, err)
	}

	err = dbx.WithTx(ctx, g.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSnapshotRepository(tx).Set(ctx, RootKey, blob, seq)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

// Attach subscribes the gateway to the store. The subscriber only
// replaces the pending snapshot under a lock and returns, so it is
// safe to run inside the store's commit. Returns the unsubscribe
// function.
//
// Attach after Rehydrate, not before, so the restore dispatch is not
// echoed straight back to disk.
func (g *Gateway) Attach(store *session.Store) func() {
	return store.Subscribe(func(seq uint64, s session.State) {
		g.mu.Lock()
		g.pending = &queuedWrite{seq: seq, snap: Snapshot{User: s.User, Lock: s.Lock}}
		g.mu.Unlock()

		select {
		case g.notify <- struct{}{}:
		default:
		}
	})
}

// Run is the single writer. It drains the pending slot one write at a
// time until ctx is cancelled. Write failures are surfaced in the log
// as unreliable persistence; they are not fatal to the process.
func (g *Gateway) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-g.notify:
			g.mu.Lock()
			q := g.pending
			g.pending = nil
			g.mu.Unlock()

			if q == nil || q.seq <= g.lastWritten {
				continue
			}

			if err := g.Save(ctx, q.seq, q.snap); err != nil {
				g.logger.Warn(ctx, "snapshot write failed, session continuity at risk", "seq", q.seq, "error", err)
				continue
			}
			g.lastWritten = q.seq
			g.logger.Debug(ctx, "snapshot saved", "seq", q.seq)
		}
	}
}

// Rehydrate performs the startup load, dispatches the restored state
// (or the fresh-install initial state) into the store, and releases
// the barrier. Absent or unreadable data degrades to the empty,
// unlocked-pending-login state; it is never fatal.
func (g *Gateway) Rehydrate(ctx context.Context, store *session.Store) {
	defer close(g.ready)

	snap, err := g.Load(ctx)
	if err != nil {
		g.logger.Warn(ctx, "snapshot load failed, starting with empty session", "error", err)
	}

	if snap == nil {
		initial := session.InitialState(g.clock())
		store.Dispatch(session.Restore{User: initial.User, Lock: initial.Lock})
		return
	}

	store.Dispatch(session.Restore{User: snap.User, Lock: snap.Lock})
	g.logger.Info(ctx, "session rehydrated", "authenticated", snap.User.Authenticated(), "locked", snap.Lock.Locked)
}

// AwaitReady blocks until the initial load has resolved. No UI may
// subscribe to or render the store before this returns.
func (g *Gateway) AwaitReady(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
