package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/overflowhosting/lockscreen/internal/client/session"
	"github.com/overflowhosting/lockscreen/internal/common"
	"github.com/overflowhosting/lockscreen/internal/logging"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ---- fake transport ----

type fakeTransport struct {
	mu           sync.Mutex
	calls        int
	lastEndpoint string
	lastBody     loginRequest

	resp loginResponse
	err  error

	// when non-nil, Post blocks until the channel is closed
	gate chan struct{}
}

func (f *fakeTransport) Post(ctx context.Context, endpoint string, body, out any, headers map[string]string) error {
	f.mu.Lock()
	f.calls++
	f.lastEndpoint = endpoint
	if lr, ok := body.(loginRequest); ok {
		f.lastBody = lr
	}
	gate := f.gate
	err := f.err
	resp := f.resp
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}
	if p, ok := out.(*loginResponse); ok {
		*p = resp
	}
	return nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newController(f *fakeTransport) (*Controller, *session.Store) {
	store := session.NewStore(session.InitialState(time.Now()))
	return NewController(f, store, testLogger()), store
}

// ---- tests ----

func TestLogin_SuccessPopulatesSession(t *testing.T) {
	f := &fakeTransport{resp: loginResponse{ID: "1", Name: "A", Email: "a@b.com", Token: "t1"}}
	c, store := newController(f)

	c.Login(context.Background(), "a@b.com", "x")

	st := store.State()
	require.Equal(t, session.UserSession{ID: "1", Name: "A", Email: "a@b.com", Token: "t1"}, st.User)
	require.False(t, st.Auth.Pending)
	require.Nil(t, st.Auth.Err)
	require.False(t, st.Lock.Locked)
	require.Equal(t, 0, st.Lock.FailedUnlockAttempts)

	require.Equal(t, LoginEndpoint, f.lastEndpoint)
	require.Equal(t, loginRequest{Email: "a@b.com", Password: "x"}, f.lastBody)
}

func TestLogin_TransitionsThroughPending(t *testing.T) {
	f := &fakeTransport{resp: loginResponse{ID: "1", Name: "A", Email: "a@b.com", Token: "t1"}}
	c, store := newController(f)

	var pendings []bool
	store.Subscribe(func(seq uint64, s session.State) {
		pendings = append(pendings, s.Auth.Pending)
	})

	c.Login(context.Background(), "a@b.com", "x")

	// clear, pending, fulfilled, unlock
	require.Equal(t, []bool{false, true, false, false}, pendings)
}

func TestLogin_RejectionLeavesSessionEmpty(t *testing.T) {
	f := &fakeTransport{err: fmt.Errorf("%w: http 401: invalid credentials", common.ErrNetwork)}
	c, store := newController(f)

	c.Login(context.Background(), "a@b.com", "wrong")

	st := store.State()
	require.Equal(t, session.UserSession{}, st.User)
	require.False(t, st.Auth.Pending)
	require.NotNil(t, st.Auth.Err)
	require.Equal(t, session.KindAuth, st.Auth.Err.Kind)
	require.Equal(t, session.MsgLoginFailed, st.Auth.Err.Message)
}

func TestLogin_TrustFailureIsSecurityError(t *testing.T) {
	f := &fakeTransport{err: fmt.Errorf("%w: bad pin", common.ErrTrustVerification)}
	c, store := newController(f)

	c.Login(context.Background(), "a@b.com", "x")

	errState := store.Auth().Err
	require.NotNil(t, errState)
	require.Equal(t, session.KindSecurity, errState.Kind)
	require.Equal(t, session.MsgSecurityError, errState.Message)
	require.Equal(t, session.UserSession{}, store.User())
}

func TestLogin_ValidationFailsWithoutRequest(t *testing.T) {
	f := &fakeTransport{}
	c, store := newController(f)

	c.Login(context.Background(), "not-an-email", "x")
	require.Equal(t, 0, f.callCount())
	require.NotNil(t, store.Auth().Err)
	require.Equal(t, session.KindAuth, store.Auth().Err.Kind)

	c.Login(context.Background(), "a@b.com", "")
	require.Equal(t, 0, f.callCount())
	require.NotNil(t, store.Auth().Err)
}

func TestLogin_SecondConcurrentLoginDoesNotFire(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeTransport{
		resp: loginResponse{ID: "1", Name: "A", Email: "a@b.com", Token: "t1"},
		gate: gate,
	}
	c, store := newController(f)

	done := make(chan struct{})
	go func() {
		c.Login(context.Background(), "a@b.com", "x")
		close(done)
	}()

	require.Eventually(t, func() bool { return f.callCount() == 1 }, time.Second, 5*time.Millisecond)

	// second submission while the first is in flight
	c.Login(context.Background(), "a@b.com", "x")
	require.Equal(t, 1, f.callCount())
	require.True(t, store.Auth().Pending)

	close(gate)
	<-done
	require.True(t, store.User().Authenticated())
}

func TestLogin_StaleResponseAfterLogoutIsDropped(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeTransport{
		resp: loginResponse{ID: "1", Name: "A", Email: "a@b.com", Token: "t1"},
		gate: gate,
	}
	c, store := newController(f)

	done := make(chan struct{})
	go func() {
		c.Login(context.Background(), "a@b.com", "x")
		close(done)
	}()
	require.Eventually(t, func() bool { return f.callCount() == 1 }, time.Second, 5*time.Millisecond)

	c.Logout(context.Background())

	close(gate)
	<-done

	// the slow success must not resurrect the session
	require.Equal(t, session.UserSession{}, store.User())
}

func TestLogout_AlwaysResets(t *testing.T) {
	f := &fakeTransport{err: fmt.Errorf("%w: http 500", common.ErrNetwork)}
	c, store := newController(f)

	c.Login(context.Background(), "a@b.com", "x")
	require.NotNil(t, store.Auth().Err)

	c.Logout(context.Background())
	require.Equal(t, session.UserSession{}, store.User())
	require.Nil(t, store.Auth().Err)
	require.False(t, store.Auth().Pending)
}

func TestLogout_DoesNotTouchLock(t *testing.T) {
	f := &fakeTransport{}
	c, store := newController(f)

	store.Dispatch(session.Lock{})
	c.Logout(context.Background())
	require.True(t, store.Lock().Locked)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix(), "sub": "1"})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestValidateRestoredSession_ExpiredTokenLogsOut(t *testing.T) {
	f := &fakeTransport{}
	c, store := newController(f)

	expired := signedToken(t, time.Now().Add(-time.Hour))
	store.Dispatch(session.Restore{
		User: session.UserSession{ID: "1", Name: "A", Email: "a@b.com", Token: expired},
		Lock: session.LockStatus{LastActiveAt: time.Now()},
	})

	c.ValidateRestoredSession(context.Background())
	require.Equal(t, session.UserSession{}, store.User())
}

func TestValidateRestoredSession_ValidTokenKept(t *testing.T) {
	f := &fakeTransport{}
	c, store := newController(f)

	valid := signedToken(t, time.Now().Add(time.Hour))
	user := session.UserSession{ID: "1", Name: "A", Email: "a@b.com", Token: valid}
	store.Dispatch(session.Restore{User: user, Lock: session.LockStatus{LastActiveAt: time.Now()}})

	c.ValidateRestoredSession(context.Background())
	require.Equal(t, user, store.User())
}

func TestValidateRestoredSession_OpaqueTokenKept(t *testing.T) {
	f := &fakeTransport{}
	c, store := newController(f)

	user := session.UserSession{ID: "1", Name: "A", Email: "a@b.com", Token: "t1"}
	store.Dispatch(session.Restore{User: user, Lock: session.LockStatus{LastActiveAt: time.Now()}})

	c.ValidateRestoredSession(context.Background())
	require.Equal(t, user, store.User())
}

func TestValidateRestoredSession_EmptySessionNoop(t *testing.T) {
	f := &fakeTransport{}
	c, store := newController(f)

	c.ValidateRestoredSession(context.Background())
	require.Equal(t, session.UserSession{}, store.User())
}

func TestValidateCredentials(t *testing.T) {
	require.NoError(t, validateCredentials("a@b.com", "x"))
	require.ErrorIs(t, validateCredentials("", "x"), common.ErrValidation)
	require.ErrorIs(t, validateCredentials("a@b", "x"), common.ErrValidation)
	require.ErrorIs(t, validateCredentials("a b@c.com", "x"), common.ErrValidation)
	require.ErrorIs(t, validateCredentials("a@b.com", ""), common.ErrValidation)
}
