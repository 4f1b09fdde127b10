// Package api implements the development login backend the client
// talks to. It keeps an in-memory user directory and issues
// short-lived HS256 session tokens.
package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/overflowhosting/lockscreen/internal/logging"
)

// User is a directory entry. Only the password hash is retained.
type User struct {
	ID    string
	Name  string
	Email string

	passwordHash [sha256.Size]byte
}

// Server holds the user directory and the token signing key.
type Server struct {
	mu       sync.RWMutex
	users    map[string]User // keyed by email
	jwtKey   []byte
	tokenTTL time.Duration
	logger   logging.Logger

	clock func() time.Time // test seam
}

func NewServer(jwtKey []byte, tokenTTL time.Duration, logger logging.Logger) *Server {
	return &Server{
		users:    make(map[string]User),
		jwtKey:   jwtKey,
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "api"),
		clock:    time.Now,
	}
}

// AddUser registers a user in the directory and returns the stored
// entry. An existing entry for the same email is replaced.
func (s *Server) AddUser(name, email, password string) User {
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		passwordHash: sha256.Sum256([]byte(password)),
	}

	s.mu.Lock()
	s.users[email] = u
	s.mu.Unlock()
	return u
}

// authenticate looks up the user and checks the password in constant
// time. The boolean is false for unknown users and bad passwords
// alike.
func (s *Server) authenticate(email, password string) (User, bool) {
	s.mu.RLock()
	u, ok := s.users[email]
	s.mu.RUnlock()
	if !ok {
		return User{}, false
	}

	candidate := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(u.passwordHash[:], candidate[:]) != 1 {
		return User{}, false
	}
	return u, true
}
