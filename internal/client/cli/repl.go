package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	Post(ctx context.Context) error
	Update(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

var errQuit = errors.New("quit")

// dispatch runs one command. Unknown commands are an error.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn(ctx) {
			printlnFn("Available commands: me, (l)ist [featured], get <id>, save <id> <file>, post, update <id>, delete <id>, logout, exit")
		} else {
			printlnFn("Available commands: register, login, (l)ist [featured], get <id>, save <id> <file>, exit")
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "me":
		return a.Me(ctx)
	case "l", "list":
		return a.List(ctx, args)
	case "get":
		return a.Get(ctx, args)
	case "save":
		return a.Save(ctx, args)
	case "post":
		return a.Post(ctx)
	case "update":
		return a.Update(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	case "exit", "quit":
		return errQuit
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// runREPL reads commands line by line from reader until EOF, "exit" or
// "quit". Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func(context.Context) string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("blogctl %s> ", statusFn(ctx)))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch err := dispatch(ctx, a, parts[0], parts[1:]); {
		case errors.Is(err, errQuit):
			printlnFn("Bye!")
			return
		case err != nil:
			printlnFn("Error:", err)
		}
	}
}
