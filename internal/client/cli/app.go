// Package cli is the interactive terminal frontend. It wires the
// session store, the persistence gateway, the pinned transport and the
// auth/lock controllers together and drives them from a REPL.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/overflowhosting/lockscreen/internal/client/auth"
	"github.com/overflowhosting/lockscreen/internal/client/config"
	"github.com/overflowhosting/lockscreen/internal/client/lock"
	"github.com/overflowhosting/lockscreen/internal/client/persistence"
	"github.com/overflowhosting/lockscreen/internal/client/session"
	"github.com/overflowhosting/lockscreen/internal/client/transport"
	"github.com/overflowhosting/lockscreen/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   *session.Store
	gateway *persistence.Gateway
	auth    *auth.Controller
	lock    *lock.Controller
	db      *sql.DB
	reader  *bufio.Reader
}

func NewApp(cfg *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	key, installID, err := persistence.LoadOrCreateKey(cfg.SecretPath)
	if err != nil {
		return nil, err
	}

	db, err := persistence.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	var verifier transport.TrustVerifier
	if len(cfg.PinnedFingerprints) > 0 {
		pv, err := transport.NewPinVerifier(cfg.PinnedFingerprints)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		verifier = pv
	}
	client := transport.NewClient(cfg.BaseURL, verifier, cfg.RequestTimeout)
	client.SetDefaultHeader("X-Install-Id", installID)

	store := session.NewStore(session.State{})
	authCtrl := auth.NewController(client, store, logger)
	lockCtrl := lock.NewController(store, lock.NewPINVerifier(cfg.UnlockPIN), authCtrl,
		cfg.LockTimeout, cfg.MaxUnlockAttempts, logger)

	return &App{
		config:  cfg,
		logger:  logger,
		store:   store,
		gateway: persistence.NewGateway(db, key, logger),
		auth:    authCtrl,
		lock:    lockCtrl,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run rehydrates the persisted session, starts the background workers
// and hands control to the REPL. It returns when the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	a.gateway.Rehydrate(ctx, a.store)
	if err := a.gateway.AwaitReady(ctx); err != nil {
		return err
	}
	// a stale lastActiveAt from a previous run means we wake up locked
	a.lock.CheckInactivity(ctx)
	a.auth.ValidateRestoredSession(ctx)

	unsub := a.gateway.Attach(a.store)
	defer unsub()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.gateway.Run(runCtx)
	go a.lock.StartAutoLockWatcher(runCtx, a.config.AutoLockCheckInterval)

	a.Root(ctx)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.store.User().Authenticated()
}

func (a *App) isLocked() bool {
	return a.store.Lock().Locked
}

func (a *App) getStatus() string {
	st := a.store.State()
	s := ""
	if st.User.Authenticated() {
		s = st.User.Email
	}
	if st.Lock.Locked {
		if s != "" {
			s += " "
		}
		s += "locked"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
