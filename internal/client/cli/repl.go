package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives. *App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isLocked() bool
	touch()
	Unlock(ctx context.Context) error
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a.
//
//	Not logged in:
//	  help, register, login, status, exit | quit
//
//	Logged in:
//	  help, add <name> [key=value ...], list, show <id>, sync, status, logout, exit | quit
//
// Every line is reported as activity. While the session is locked any line
// starts the unlock challenge instead of running a command. The loop ends on
// EOF, on exit/quit, when ctx is done, or when the challenge is abandoned.
// Command errors are printed and never stop the loop. All output, prompts
// included, goes to out.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(out, "offsync %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		if a.isLocked() {
			if err := a.Unlock(ctx); err != nil {
				if errors.Is(err, errSessionTerminated) {
					fmt.Fprintln(out, "Session ended. Bye!")
					return
				}
				fmt.Fprintln(out, userMessage(err))
			}
			continue
		}
		a.touch()

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: add <name> [key=value ...], (l)ist, show <id>, sync, status, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: register, login, status, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "add":
			cmdErr = a.Add(ctx, args)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "show":
			cmdErr = a.Show(ctx, args)

		case "sync":
			cmdErr = a.Sync(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, userMessage(cmdErr))
		}
	}
}
