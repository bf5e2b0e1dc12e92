package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	RefreshProfile(ctx context.Context) error
	Reload(ctx context.Context) error
	Forget(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the storefront CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, when ctx is done, or
// when the user types "exit" or "quit".
//
// Commands
//
//	Always:
//	  - help          : show available commands
//	  - whoami        : show the session state
//	  - reload        : re-check the session with the server
//	  - forget        : drop saved cookies
//	  - exit | quit   : leave the program
//
//	Not logged in:
//	  - login         : authenticate
//
//	Logged in:
//	  - refresh       : refresh profile metadata
//	  - logout        : log out
//
// Errors returned by command handlers are ignored here; handlers print
// their own messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("shop%s> ", prefixSpace(statusFn())))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, refresh, reload, logout, forget, exit")
			} else {
				printlnFn("Available commands: whoami, login, reload, forget, exit")
			}

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "refresh":
			_ = a.RefreshProfile(ctx)

		case "reload":
			_ = a.Reload(ctx)

		case "forget":
			_ = a.Forget(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func prefixSpace(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}
