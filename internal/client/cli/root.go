package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = func(a ...any) { fmt.Println(a...) }

// commandSet defines the minimal command surface the REPL needs to
// operate. The real App type satisfies this interface; tests can
// provide a lightweight stub.
type commandSet interface {
	isLoggedIn() bool
	isLocked() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
	Status(ctx context.Context) error
	Clear(ctx context.Context) error
	Touch()
}

// Root starts the interactive loop on stdin.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Lockscreen CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

// runREPL reads a line from the provided scanner, parses the first
// token as the command, and dispatches to methods on 'a'. Unknown
// commands are reported back to the user. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Every handled line counts as user activity and pushes the
// inactivity deadline back; while the device is locked only unlock,
// status, logout and exit are available.
//
// Errors returned by command handlers are ignored here; handlers
// report their own failures. This keeps the loop resilient and
// focused on I/O.
func runREPL(ctx context.Context, a commandSet, statusFn func() string, scanner *bufio.Scanner) {
	for {
		fmt.Printf("lockscreen %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if a.isLocked() {
			switch cmd {
			case "unlock", "status", "logout", "exit", "quit", "help":
			default:
				printlnFn("Device is locked, unlock first")
				continue
			}
		}

		switch cmd {
		case "help":
			switch {
			case a.isLocked():
				printlnFn("Available commands: unlock, status, logout, exit")
			case a.isLoggedIn():
				printlnFn("Available commands: lock, status, logout, exit")
			default:
				printlnFn("Available commands: login, status, clear, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "lock":
			_ = a.Lock(ctx)

		case "unlock":
			_ = a.Unlock(ctx)

		case "status":
			_ = a.Status(ctx)

		case "clear":
			_ = a.Clear(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		a.Touch()
	}
}
