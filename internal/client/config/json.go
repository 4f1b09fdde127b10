package config

import (
	"encoding/json"
	"os"

	"github.com/overflowhosting/lockscreen/internal/flagx"
	"github.com/overflowhosting/lockscreen/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It
// relies on timex.Duration so JSON can specify intervals either as
// strings like "60s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	BaseURL               string         `json:"base_url"`
	RequestTimeout        timex.Duration `json:"request_timeout"`
	LockTimeout           timex.Duration `json:"lock_timeout"`
	MaxUnlockAttempts     int            `json:"max_unlock_attempts"`
	AutoLockCheckInterval timex.Duration `json:"auto_lock_check_interval"`
	DatabasePath          string         `json:"database_path"`
	SecretPath            string         `json:"secret_path"`
	PinnedFingerprints    []string       `json:"pinned_fingerprints"`
	UnlockPIN             string         `json:"unlock_pin"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Only fields present in the file override the current values.
// Panics on read or unmarshal errors (caller should recover if
// desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	applyJson(cfg, &jc)
}

func applyJson(cfg *Config, jc *JsonConfig) {
	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LockTimeout.Duration != 0 {
		cfg.LockTimeout = jc.LockTimeout.Duration
	}
	if jc.MaxUnlockAttempts != 0 {
		cfg.MaxUnlockAttempts = jc.MaxUnlockAttempts
	}
	if jc.AutoLockCheckInterval.Duration != 0 {
		cfg.AutoLockCheckInterval = jc.AutoLockCheckInterval.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SecretPath != "" {
		cfg.SecretPath = jc.SecretPath
	}
	if len(jc.PinnedFingerprints) > 0 {
		cfg.PinnedFingerprints = jc.PinnedFingerprints
	}
	if jc.UnlockPIN != "" {
		cfg.UnlockPIN = jc.UnlockPIN
	}
}
