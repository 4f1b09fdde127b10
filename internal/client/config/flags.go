package config

import (
	"flag"
	"os"
	"time"

	"github.com/overflowhosting/lockscreen/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend API (default from Config)
//	-t int      inactivity lock timeout in seconds
//	-m int      failed unlock attempts before lockout
//	-d string   path to the local snapshot database
//
// The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-m", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the backend API")
	lockTimeout := fs.Int("t", int(cfg.LockTimeout.Seconds()), "inactivity lock timeout (in seconds)")
	fs.IntVar(&cfg.MaxUnlockAttempts, "m", cfg.MaxUnlockAttempts, "failed unlock attempts before lockout")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local snapshot database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.LockTimeout = time.Duration(*lockTimeout) * time.Second
}
