package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/overflowhosting/lockscreen/internal/client/lock"
	"github.com/overflowhosting/lockscreen/internal/client/session"
	"github.com/overflowhosting/lockscreen/internal/common"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

// Login prompts for credentials and drives the remote login. The
// outcome lands in the session store; the handler only reports it.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getSecret("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.auth.Login(ctx, email, string(password))

	if e := a.store.Auth().Err; e != nil {
		printlnFn(e.Message)
		return nil
	}
	printlnFn(fmt.Sprintf("Logged in as %s", a.store.User().Name))
	return nil
}

// Logout ends the session. The device lock is left alone.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

// Lock engages the device lock immediately.
func (a *App) Lock(ctx context.Context) error {
	a.lock.Lock(ctx)
	printlnFn("Locked")
	return nil
}

// Unlock prompts for the PIN and attempts to disengage the lock.
func (a *App) Unlock(ctx context.Context) error {
	if !a.isLocked() {
		printlnFn("Device is not locked")
		return nil
	}

	pin, err := getSecret("Enter PIN", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	err = a.lock.Unlock(ctx, string(pin))
	switch {
	case errors.Is(err, common.ErrLockedOut):
		printlnFn("Too many failed attempts, session terminated")
	case errors.Is(err, lock.ErrUnlockFailed):
		left := a.config.MaxUnlockAttempts - a.store.Lock().FailedUnlockAttempts
		printlnFn(fmt.Sprintf("Wrong PIN, %d attempts left", left))
	case err != nil:
		return err
	default:
		printlnFn("Unlocked")
	}
	return nil
}

// Status prints the current session and lock state.
func (a *App) Status(ctx context.Context) error {
	st := a.store.State()

	if st.User.Authenticated() {
		printlnFn(fmt.Sprintf("User: %s <%s>", st.User.Name, st.User.Email))
	} else {
		printlnFn("User: not logged in")
	}
	if st.Lock.Locked {
		printlnFn(fmt.Sprintf("Lock: locked, failed attempts %d/%d",
			st.Lock.FailedUnlockAttempts, a.config.MaxUnlockAttempts))
	} else {
		printlnFn(fmt.Sprintf("Lock: unlocked, last activity %s", st.Lock.LastActiveAt.Format("15:04:05")))
	}
	if st.Auth.Pending {
		printlnFn("Auth: request in flight")
	}
	if st.Auth.Err != nil {
		printlnFn(fmt.Sprintf("Auth: %s", st.Auth.Err.Message))
	}
	return nil
}

// Clear dismisses the last login error.
func (a *App) Clear(ctx context.Context) error {
	a.store.Dispatch(session.Clear{})
	return nil
}

// Touch records user activity for the inactivity timer.
func (a *App) Touch() {
	a.lock.Touch()
}
