package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
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
	List(ctx context.Context) error
	Show(ctx context.Context, id int) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

// runREPL starts a simple read-eval-print loop for the catalog CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// The prompt shows the current status (from statusFn). Commands:
//
//	help            show available commands
//	login, logout   start or end a session
//	whoami          show the current user
//	list, l         list products
//	show <id>       show one product
//	add             create a product
//	edit <id>       change a product
//	delete <id>     delete a product
//	exit, quit      leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("catalog%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, show <id>, add, edit <id>, delete <id>, whoami, logout, exit")
			} else {
				printlnFn("Available commands: login, (l)ist, show <id>, whoami, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			if id, ok := parseID(cmd, args); ok {
				_ = a.Show(ctx, id)
			}

		case "add":
			_ = a.Add(ctx)

		case "edit":
			if id, ok := parseID(cmd, args); ok {
				_ = a.Edit(ctx, id)
			}

		case "delete":
			if id, ok := parseID(cmd, args); ok {
				_ = a.Delete(ctx, id)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

func parseID(cmd string, args []string) (int, bool) {
	if len(args) == 0 {
		printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		printlnFn("Invalid product id:", args[0])
		return 0, false
	}
	return id, true
}
