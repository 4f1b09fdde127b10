package session

import (
	"fmt"
	"time"
)

// Action is the closed set of state transitions. The unexported marker
// method keeps the set closed to this package, which is what lets
// reduce treat an unknown variant as a programming error.
type Action interface {
	actionName() string
}

// Pending marks a login request as in flight.
type Pending struct{}

// Fulfilled installs a fully populated user session after a successful
// login.
type Fulfilled struct {
	User UserSession
}

// Rejected records a failed login attempt.
type Rejected struct {
	Kind    ErrorKind
	Message string
}

// Clear drops a surfaced login error. Clearing an absent error is a
// no-op.
type Clear struct{}

// Logout resets the user session to empty and clears any login error.
// It does not touch the lock status; locking is an orthogonal concern.
type Logout struct{}

// Lock engages the device lock.
type Lock struct{}

// Unlock disengages the lock after a verified credential, resetting the
// failed-attempt counter and the activity clock.
type Unlock struct {
	At time.Time
}

// RecordFailedUnlock counts a failed unlock attempt. The lock stays
// engaged.
type RecordFailedUnlock struct{}

// Touch records user activity, pushing back the inactivity deadline.
type Touch struct {
	At time.Time
}

// Restore replaces the persisted portion of the state during
// rehydration. The auth request state always starts idle.
type Restore struct {
	User UserSession
	Lock LockStatus
}

func (Pending) actionName() string            { return "pending" }
func (Fulfilled) actionName() string          { return "fulfilled" }
func (Rejected) actionName() string           { return "rejected" }
func (Clear) actionName() string              { return "clear" }
func (Logout) actionName() string             { return "logout" }
func (Lock) actionName() string               { return "lock" }
func (Unlock) actionName() string             { return "unlock" }
func (RecordFailedUnlock) actionName() string { return "recordFailedUnlock" }
func (Touch) actionName() string              { return "touch" }
func (Restore) actionName() string            { return "restore" }

// reduce is the pure transition function: (state, action) -> state.
// It never mutates its input and handles every action variant; a new
// variant without a case here is a bug, not a silent default.
func reduce(s State, a Action) State {
	switch act := a.(type) {
	case Pending:
		// Pending and a surfaced error are mutually exclusive, so
		// asserting pending also drops any stale error.
		s.Auth = AuthRequestState{Pending: true}

	case Fulfilled:
		if !act.User.Authenticated() {
			// A partial session must never become observable. Treat an
			// incomplete payload as a failed login.
			s.Auth = AuthRequestState{Err: &AuthError{Kind: KindAuth, Message: MsgLoginFailed}}
			return s
		}
		s.User = act.User
		s.Auth = AuthRequestState{}

	case Rejected:
		s.Auth = AuthRequestState{Err: &AuthError{Kind: act.Kind, Message: act.Message}}

	case Clear:
		s.Auth.Err = nil

	case Logout:
		s.User = UserSession{}
		s.Auth = AuthRequestState{}

	case Lock:
		s.Lock.Locked = true

	case Unlock:
		s.Lock.Locked = false
		s.Lock.FailedUnlockAttempts = 0
		s.Lock.LastActiveAt = act.At

	case RecordFailedUnlock:
		s.Lock.Locked = true
		s.Lock.FailedUnlockAttempts++

	case Touch:
		s.Lock.LastActiveAt = act.At

	case Restore:
		s.User = act.User
		s.Lock = act.Lock
		s.Auth = AuthRequestState{}

	default:
		panic(fmt.Sprintf("session: unknown action %T", a))
	}
	return s
}
