// Package lock drives the device-lock state machine: inactivity and
// background locking, credential-gated unlock, and the failed-attempt
// lockout that escalates to full session termination.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/overflowhosting/lockscreen/internal/client/session"
	"github.com/overflowhosting/lockscreen/internal/common"
	"github.com/overflowhosting/lockscreen/internal/logging"
)

// ErrUnlockFailed is returned for a failed unlock attempt below the
// lockout threshold.
var ErrUnlockFailed = errors.New("unlock failed")

// CredentialVerifier checks an unlock credential (PIN, biometric,
// password). The verification mechanism is an external collaborator;
// the controller only reacts to its verdict.
type CredentialVerifier interface {
	Verify(ctx context.Context, credential string) (bool, error)
}

// SessionTerminator ends the authenticated session. Satisfied by
// auth.Controller.
type SessionTerminator interface {
	Logout(ctx context.Context)
}

// Controller owns lock and unlock transitions against the store.
type Controller struct {
	store       *session.Store
	verifier    CredentialVerifier
	terminator  SessionTerminator
	timeout     time.Duration
	maxAttempts int
	logger      logging.Logger

	clock func() time.Time // test seam
}

func NewController(store *session.Store, verifier CredentialVerifier, terminator SessionTerminator,
	timeout time.Duration, maxAttempts int, logger logging.Logger) *Controller {
	return &Controller{
		store:       store,
		verifier:    verifier,
		terminator:  terminator,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "lock"),
		clock:       time.Now,
	}
}

// Lock engages the device lock explicitly.
func (c *Controller) Lock(ctx context.Context) {
	c.engage(ctx, "user request")
}

// HandleBackground engages the lock when the application moves to the
// background.
func (c *Controller) HandleBackground(ctx context.Context) {
	c.engage(ctx, "app backgrounded")
}

func (c *Controller) engage(ctx context.Context, reason string) {
	if c.store.Lock().Locked {
		return
	}
	c.store.Dispatch(session.Lock{})
	c.logger.Info(ctx, "device locked", "reason", reason)
}

// Touch records user activity, pushing back the inactivity deadline.
// Activity while locked does not count.
func (c *Controller) Touch() {
	if c.store.Lock().Locked {
		return
	}
	c.store.Dispatch(session.Touch{At: c.clock()})
}

// CheckInactivity engages the lock when the inactivity timeout has
// elapsed. It reports whether the device is locked afterwards. Called
// once after rehydration (a stale persisted lastActiveAt means the
// device wakes up locked) and periodically by the watcher.
func (c *Controller) CheckInactivity(ctx context.Context) bool {
	st := c.store.Lock()
	if st.Locked {
		return true
	}
	if c.clock().Sub(st.LastActiveAt) > c.timeout {
		c.store.Dispatch(session.Lock{})
		c.logger.Info(ctx, "device locked", "reason", "inactivity", "idle", c.clock().Sub(st.LastActiveAt).String())
		return true
	}
	return false
}

// StartAutoLockWatcher polls the inactivity deadline until ctx is
// cancelled.
func (c *Controller) StartAutoLockWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CheckInactivity(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Unlock attempts to disengage the lock with the given credential.
//
// Once the failed-attempt threshold has been crossed, the lock can no
// longer be opened by a correct credential: the session is terminated
// and only a full re-authentication resets the counter. Unlock then
// returns common.ErrLockedOut without consulting the verifier.
func (c *Controller) Unlock(ctx context.Context, credential string) error {
	st := c.store.Lock()
	if !st.Locked {
		return nil
	}
	if st.FailedUnlockAttempts >= c.maxAttempts {
		return common.ErrLockedOut
	}

	ok, err := c.verifier.Verify(ctx, credential)
	if err != nil {
		// a verifier malfunction is not a failed attempt
		c.logger.Error(ctx, "credential verification unavailable", "error", err)
		return err
	}

	if ok {
		c.store.Dispatch(session.Unlock{At: c.clock()})
		c.logger.Info(ctx, "device unlocked")
		return nil
	}

	c.store.Dispatch(session.RecordFailedUnlock{})
	attempts := c.store.Lock().FailedUnlockAttempts
	if attempts >= c.maxAttempts {
		c.logger.Warn(ctx, "unlock attempt limit reached, terminating session", "attempts", attempts)
		c.terminator.Logout(ctx)
		return common.ErrLockedOut
	}

	c.logger.Warn(ctx, "unlock attempt failed", "attempts", attempts)
	return ErrUnlockFailed
}
