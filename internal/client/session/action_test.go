package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testUser = UserSession{ID: "1", Name: "A", Email: "a@b.com", Token: "t1"}

func TestReduce_LoginSequence(t *testing.T) {
	now := time.Now()
	s := InitialState(now)

	s = reduce(s, Pending{})
	require.True(t, s.Auth.Pending)
	require.Nil(t, s.Auth.Err)

	s = reduce(s, Fulfilled{User: testUser})
	require.False(t, s.Auth.Pending)
	require.Nil(t, s.Auth.Err)
	require.Equal(t, testUser, s.User)
	require.True(t, s.User.Authenticated())
}

func TestReduce_RejectedKeepsUserEmpty(t *testing.T) {
	s := reduce(InitialState(time.Now()), Pending{})
	s = reduce(s, Rejected{Kind: KindAuth, Message: MsgLoginFailed})

	require.False(t, s.Auth.Pending)
	require.NotNil(t, s.Auth.Err)
	require.Equal(t, KindAuth, s.Auth.Err.Kind)
	require.Equal(t, UserSession{}, s.User)
}

func TestReduce_SecurityRejectionIsDistinct(t *testing.T) {
	s := reduce(InitialState(time.Now()), Rejected{Kind: KindSecurity, Message: MsgSecurityError})

	require.Equal(t, KindSecurity, s.Auth.Err.Kind)
	require.Equal(t, MsgSecurityError, s.Auth.Err.Message)
	require.NotEqual(t, MsgLoginFailed, s.Auth.Err.Message)
}

func TestReduce_FulfilledWithPartialSessionRejects(t *testing.T) {
	s := reduce(InitialState(time.Now()), Pending{})
	s = reduce(s, Fulfilled{User: UserSession{ID: "1", Email: "a@b.com"}})

	require.Equal(t, UserSession{}, s.User)
	require.False(t, s.Auth.Pending)
	require.NotNil(t, s.Auth.Err)
}

func TestReduce_PendingClearsStaleError(t *testing.T) {
	s := reduce(InitialState(time.Now()), Rejected{Kind: KindAuth, Message: MsgLoginFailed})
	s = reduce(s, Pending{})

	require.True(t, s.Auth.Pending)
	require.Nil(t, s.Auth.Err)
}

func TestReduce_ClearIsIdempotent(t *testing.T) {
	s := InitialState(time.Now())
	require.Equal(t, s, reduce(s, Clear{}))

	withErr := reduce(s, Rejected{Kind: KindAuth, Message: MsgLoginFailed})
	cleared := reduce(withErr, Clear{})
	require.Nil(t, cleared.Auth.Err)
	require.Equal(t, cleared, reduce(cleared, Clear{}))
}

func TestReduce_LogoutResetsSessionNotLock(t *testing.T) {
	now := time.Now()
	s := InitialState(now)
	s = reduce(s, Fulfilled{User: testUser})
	s = reduce(s, Lock{})

	s = reduce(s, Logout{})
	require.Equal(t, UserSession{}, s.User)
	require.Nil(t, s.Auth.Err)
	require.True(t, s.Lock.Locked, "logout must not touch the lock")
}

func TestReduce_LockUnlockCycle(t *testing.T) {
	now := time.Now()
	s := InitialState(now)

	s = reduce(s, Lock{})
	require.True(t, s.Lock.Locked)

	s = reduce(s, RecordFailedUnlock{})
	s = reduce(s, RecordFailedUnlock{})
	require.True(t, s.Lock.Locked)
	require.Equal(t, 2, s.Lock.FailedUnlockAttempts)

	later := now.Add(time.Minute)
	s = reduce(s, Unlock{At: later})
	require.False(t, s.Lock.Locked)
	require.Equal(t, 0, s.Lock.FailedUnlockAttempts)
	require.Equal(t, later, s.Lock.LastActiveAt)
}

func TestReduce_TouchMovesActivityClock(t *testing.T) {
	now := time.Now()
	s := InitialState(now)

	later := now.Add(30 * time.Second)
	s = reduce(s, Touch{At: later})
	require.Equal(t, later, s.Lock.LastActiveAt)
}

func TestReduce_RestoreReplacesPersistedStateOnly(t *testing.T) {
	s := reduce(InitialState(time.Now()), Pending{})

	lock := LockStatus{Locked: true, LastActiveAt: time.Now(), FailedUnlockAttempts: 1}
	s = reduce(s, Restore{User: testUser, Lock: lock})

	require.Equal(t, testUser, s.User)
	require.Equal(t, lock, s.Lock)
	require.Equal(t, AuthRequestState{}, s.Auth)
}

func TestReduce_UnknownActionPanics(t *testing.T) {
	type rogue struct{ Action }
	require.Panics(t, func() { reduce(InitialState(time.Now()), rogue{}) })
}
