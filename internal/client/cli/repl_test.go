package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	locked   bool

	unlockErrs []error
	addErr     error

	calls   []string
	touches int
	args    []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) isLocked() bool   { return f.locked }
func (f *fakeExec) touch()           { f.touches++ }

func (f *fakeExec) Unlock(ctx context.Context) error {
	f.calls = append(f.calls, "unlock")
	if len(f.unlockErrs) == 0 {
		f.locked = false
		return nil
	}
	err := f.unlockErrs[0]
	f.unlockErrs = f.unlockErrs[1:]
	if err == nil {
		f.locked = false
	}
	return err
}

func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}

func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}

func (f *fakeExec) Add(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "add")
	f.args = args
	return f.addErr
}

func (f *fakeExec) List(ctx context.Context) error {
	f.calls = append(f.calls, "list")
	return nil
}

func (f *fakeExec) Show(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "show")
	f.args = args
	return nil
}

func (f *fakeExec) Sync(ctx context.Context) error {
	f.calls = append(f.calls, "sync")
	return nil
}

func (f *fakeExec) Status(ctx context.Context) error {
	f.calls = append(f.calls, "status")
	return nil
}

func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	out := &strings.Builder{}

	input := rdr(strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"add Mihai city=Riga",
		"l",
		"sync",
		"status",
		"foobar",
		"logout",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(status)" }, input, out)

	require.Equal(t, []string{"login", "add", "list", "sync", "status", "logout"}, exec.calls)
	require.Equal(t, []string{"Mihai", "city=Riga"}, exec.args)
	require.Equal(t, 11, exec.touches)
	require.Contains(t, out.String(), "Available commands: register, login, status, exit")
	require.Contains(t, out.String(), "Available commands: add <name>")
	require.Contains(t, out.String(), "Unknown command: foobar")
	require.Contains(t, out.String(), "offsync (status)> ")
	require.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_EOFStops(t *testing.T) {
	out := &strings.Builder{}
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("register"), out)
	require.Equal(t, []string{"register"}, exec.calls)
}

func TestRunREPL_CommandErrorsPrinted(t *testing.T) {
	out := &strings.Builder{}
	exec := &fakeExec{loggedIn: true, addErr: common.ErrorUnauthorized}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("add x\nexit\n"), out)
	require.Contains(t, out.String(), "You need to be authenticated first")
}

func TestRunREPL_LockedChallenge(t *testing.T) {
	out := &strings.Builder{}
	exec := &fakeExec{loggedIn: true, locked: true, unlockErrs: []error{errInvalidCredentials, nil}}

	runREPL(context.Background(), exec, func() string { return "" }, rdr("list\n\nlist\nexit\n"), out)

	require.Equal(t, []string{"unlock", "unlock", "list"}, exec.calls)
	require.Equal(t, 2, exec.touches)
	require.Contains(t, out.String(), "Invalid username or password")
}

func TestRunREPL_AbandonEnds(t *testing.T) {
	out := &strings.Builder{}
	exec := &fakeExec{loggedIn: true, locked: true, unlockErrs: []error{errSessionTerminated}}

	runREPL(context.Background(), exec, func() string { return "" }, rdr("\nlist\n"), out)

	require.Equal(t, []string{"unlock"}, exec.calls)
	require.Contains(t, out.String(), "Session ended. Bye!")
}

func TestRunREPL_ContextCanceled(t *testing.T) {
	out := &strings.Builder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("login\n"), out)
	require.Empty(t, exec.calls)
}

func TestUserMessage(t *testing.T) {
	require.Equal(t, "Server is offline, try again when connected", userMessage(common.ErrorOffline))
	require.Equal(t, "Username is already taken", userMessage(fmt.Errorf("x: %w", common.ErrorUsernameTaken)))
	require.Equal(t, "A sync is already running", userMessage(common.ErrorSyncInProgress))
	require.Equal(t, "Record not found", userMessage(fmt.Errorf("record x: %w", common.ErrorNotFound)))
	require.Equal(t, "Error: boom", userMessage(errors.New("boom")))
}

func TestRunREPL_ShowDispatch(t *testing.T) {
	out := &strings.Builder{}
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "(alice online)" }, rdr("show r-1\nexit\n"), out)

	require.Equal(t, []string{"show"}, exec.calls)
	require.Equal(t, []string{"r-1"}, exec.args)
	require.Equal(t, 2, strings.Count(out.String(), "offsync (alice online)> "))
}
