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
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	BiometricLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	Theme(ctx context.Context, args []string) error

	Profile(ctx context.Context) error
	Rename(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Avatar(ctx context.Context, args []string) error
	Biometric(ctx context.Context, args []string) error
	DeleteAccount(ctx context.Context) error

	AddTask(ctx context.Context) error
	ListTasks(ctx context.Context, args []string) error
	CompleteTask(ctx context.Context, args []string) error
	RemoveTask(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, blogin, theme [light|dark], exit"
	helpLoggedIn  = "Available commands: add, (l)ist [-status s] [-priority p] [-sort k], done <id>, rm <id>, " +
		"profile, rename, passwd, avatar <file>|initials [-blur], biometric [on|off], theme [light|dark], " +
		"delete-account, logout, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit", and
// dispatches them to a. The first token is the command, the rest are its
// arguments. Commands that need a user are refused while logged out.
// Handler errors are printed and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("tk%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		handler, needsUser, ok := lookup(a, cmd, args)
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if needsUser && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}
		if err := handler(ctx); err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}

func lookup(a execIface, cmd string, args []string) (func(context.Context) error, bool, bool) {
	withArgs := func(f func(context.Context, []string) error) func(context.Context) error {
		return func(ctx context.Context) error { return f(ctx, args) }
	}

	switch cmd {
	case "register":
		return a.Register, false, true
	case "login":
		return a.Login, false, true
	case "blogin":
		return a.BiometricLogin, false, true
	case "theme":
		return withArgs(a.Theme), false, true
	case "logout":
		return a.Logout, true, true
	case "profile", "whoami":
		return a.Profile, true, true
	case "rename":
		return a.Rename, true, true
	case "passwd":
		return a.ChangePassword, true, true
	case "avatar":
		return withArgs(a.Avatar), true, true
	case "biometric":
		return withArgs(a.Biometric), true, true
	case "delete-account":
		return a.DeleteAccount, true, true
	case "add":
		return a.AddTask, true, true
	case "l", "list":
		return withArgs(a.ListTasks), true, true
	case "done":
		return withArgs(a.CompleteTask), true, true
	case "rm":
		return withArgs(a.RemoveTask), true, true
	default:
		return nil, false, false
	}
}
