// Package config holds runtime settings for the lockscreen client.
package config

import "time"

// Config holds runtime settings for the lockscreen client.
//
// Security-relevant knobs (lock timeout, unlock attempt threshold,
// pinned fingerprints) are deliberately configuration rather than
// constants; the defaults are the conservative values used pending
// product input.
type Config struct {
	// BaseURL is the API endpoint base; resource paths are appended
	// to it unchanged.
	BaseURL string

	// RequestTimeout bounds a single HTTP round trip.
	RequestTimeout time.Duration

	// LockTimeout is the inactivity duration after which the device
	// lock engages.
	LockTimeout time.Duration

	// MaxUnlockAttempts is the failed-unlock threshold. Crossing it
	// terminates the session.
	MaxUnlockAttempts int

	// AutoLockCheckInterval is how often the auto-lock watcher checks
	// the inactivity deadline.
	AutoLockCheckInterval time.Duration

	// DatabasePath is the sqlite file holding the encrypted snapshot.
	DatabasePath string

	// SecretPath is the installation secret file the snapshot key is
	// derived from.
	SecretPath string

	// PinnedFingerprints are hex SPKI SHA-256 pins for the server
	// certificate chain. Empty means system trust roots.
	PinnedFingerprints []string

	// UnlockPIN configures the CLI's stand-in credential verifier.
	UnlockPIN string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "https://lock-screen-backend.overflowhosting.tech"
	c.RequestTimeout = 12 * time.Second
	c.LockTimeout = 60 * time.Second
	c.MaxUnlockAttempts = 5
	c.AutoLockCheckInterval = 5 * time.Second
	c.DatabasePath = "lockscreen.db"
	c.SecretPath = "lockscreen.secret"
	c.UnlockPIN = "0000"
}

// LoadConfig constructs a Config, applies defaults, then overlays
// values from JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
