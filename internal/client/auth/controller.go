// Package auth orchestrates the login/logout use case. The controller
// is fire-and-forget against the store: outcomes are observed through
// the store's auth request state, not through return values.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/overflowhosting/lockscreen/internal/client/session"
	"github.com/overflowhosting/lockscreen/internal/common"
	"github.com/overflowhosting/lockscreen/internal/logging"
)

// LoginEndpoint is the resource path of the login operation, resolved
// against the transport's configured base URL.
const LoginEndpoint = "/api/users/login"

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Transport is the surface the controller needs from the API client.
type Transport interface {
	Post(ctx context.Context, endpoint string, body, out any, headers map[string]string) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// Controller drives login and logout against the session store.
type Controller struct {
	client Transport
	store  *session.Store
	logger logging.Logger

	mu       sync.Mutex
	inFlight bool
	// generation of the newest login attempt; bumped by Login and by
	// Logout so a slow response cannot overwrite a newer outcome.
	generation uint64

	clock func() time.Time // test seam
}

func NewController(client Transport, store *session.Store, logger logging.Logger) *Controller {
	return &Controller{
		client: client,
		store:  store,
		logger: logger.With("component", "auth"),
		clock:  time.Now,
	}
}

// Login validates the credentials locally, then drives the remote
// login and feeds the outcome into the store:
//
//	pending -> fulfilled(user), or
//	pending -> rejected(kind, message)
//
// A trust-verification failure is surfaced as the distinguished
// security error so the UI renders it differently from a retryable
// failure. While another login is in flight the call only re-asserts
// pending; it never fires a second request for the same store.
func (c *Controller) Login(ctx context.Context, email, password string) {
	if err := validateCredentials(email, password); err != nil {
		// resolved locally; the request never leaves the device
		c.logger.Warn(ctx, "login input rejected", "error", err)
		c.store.Dispatch(session.Rejected{Kind: session.KindAuth, Message: session.MsgLoginFailed})
		return
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.store.Dispatch(session.Pending{})
		return
	}
	c.inFlight = true
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	c.store.Dispatch(session.Clear{})
	c.store.Dispatch(session.Pending{})

	var resp loginResponse
	err := c.client.Post(ctx, LoginEndpoint, loginRequest{Email: email, Password: password}, &resp, nil)

	c.mu.Lock()
	c.inFlight = false
	stale := gen != c.generation
	c.mu.Unlock()
	if stale {
		// a newer attempt or a logout owns the store now
		c.logger.Debug(ctx, "dropping stale login response")
		return
	}

	if err != nil {
		if errors.Is(err, common.ErrTrustVerification) {
			c.logger.Error(ctx, "login blocked, trust verification failed", "error", err)
			c.store.Dispatch(session.Rejected{Kind: session.KindSecurity, Message: session.MsgSecurityError})
			return
		}
		c.logger.Warn(ctx, "login failed", "error", err)
		c.store.Dispatch(session.Rejected{Kind: session.KindAuth, Message: session.MsgLoginFailed})
		return
	}

	c.store.Dispatch(session.Fulfilled{User: session.UserSession{
		ID:    resp.ID,
		Name:  resp.Name,
		Email: resp.Email,
		Token: resp.Token,
	}})
	// a fresh login starts unlocked with a clean attempt counter
	c.store.Dispatch(session.Unlock{At: c.clock()})
	c.logger.Info(ctx, "login succeeded", "user", resp.ID)
}

// Logout unconditionally resets the user session and clears any login
// error. It does not touch the lock status; locking is an orthogonal
// concern. Any login still in flight is invalidated.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()

	c.store.Dispatch(session.Logout{})
	c.logger.Info(ctx, "logged out")
}

// ValidateRestoredSession inspects the rehydrated session token and
// logs out when it carries an expiry claim that has already passed.
// Opaque (non-JWT) tokens and tokens without an expiry are kept; the
// server remains the authority either way.
func (c *Controller) ValidateRestoredSession(ctx context.Context) {
	user := c.store.User()
	if !user.Authenticated() {
		return
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(user.Token, claims); err != nil {
		c.logger.Debug(ctx, "restored token is not a JWT, keeping session")
		return
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if exp.Before(c.clock()) {
		c.logger.Info(ctx, "restored session token expired, logging out")
		c.Logout(ctx)
	}
}

func validateCredentials(email, password string) error {
	if !emailRe.MatchString(email) {
		return fmt.Errorf("%w: malformed email", common.ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: empty password", common.ErrValidation)
	}
	return nil
}
