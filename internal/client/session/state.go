// Package session holds the authoritative in-memory state of the
// client: the user session, the device lock status and the state of the
// current authentication request. All mutations go through named
// actions applied by a pure transition function, so any state is
// replayable from an action log.
package session

import "time"

// User-facing login failure messages. Exactly two exist on purpose: a
// trust-verification failure must not look like a transient error the
// user is tempted to retry.
const (
	MsgLoginFailed   = "Login Failed!"
	MsgSecurityError = "Security error: Connection may be compromised"
)

// ErrorKind distinguishes the two renderable login failure classes.
type ErrorKind int

const (
	// KindAuth is a generic, retryable login failure (bad credentials,
	// network trouble, invalid input).
	KindAuth ErrorKind = iota
	// KindSecurity means the transport could not verify the server's
	// identity. Rendered distinctly and never retried automatically.
	KindSecurity
)

// AuthError is the rejection recorded on a failed login attempt.
type AuthError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// UserSession identifies the authenticated user. Either all four fields
// are empty (unauthenticated) or all four are set; no partial session
// is ever observable outside a transition.
type UserSession struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// Authenticated reports whether the session is fully populated.
func (u UserSession) Authenticated() bool {
	return u.ID != "" && u.Name != "" && u.Email != "" && u.Token != ""
}

// LockStatus describes the device-lock gate.
type LockStatus struct {
	Locked               bool      `json:"locked"`
	LastActiveAt         time.Time `json:"lastActiveAt"`
	FailedUnlockAttempts int       `json:"failedUnlockAttempts"`
}

// AuthRequestState tracks the in-flight login request. Pending and a
// non-nil Err are mutually exclusive at any instant.
type AuthRequestState struct {
	Pending bool       `json:"pending"`
	Err     *AuthError `json:"error"`
}

// State is the complete store state. It is passed and stored by value;
// AuthError is the only pointer and the reducer never mutates it in
// place, so a returned State is safe to keep.
type State struct {
	User UserSession      `json:"user"`
	Lock LockStatus       `json:"lock"`
	Auth AuthRequestState `json:"auth"`
}

// InitialState is the fresh-install state: unauthenticated, unlocked,
// activity clock starting now.
func InitialState(now time.Time) State {
	return State{
		Lock: LockStatus{Locked: false, LastActiveAt: now},
	}
}
