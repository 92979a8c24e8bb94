package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/client/lock"
	"github.com/dmitrijs2005/offsync/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) isLoggedIn() bool {
	return a.session.Authenticated()
}

func (a *App) isLocked() bool {
	return a.lock.State() == lock.Locked
}

func (a *App) touch() {
	a.lock.Activity()
}

// Register prompts for a username and password and creates the account on
// the remote store.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, username, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can log in now.")
	return nil
}

// Login authenticates against the remote store and, on success, starts the
// inactivity lock. An empty username reuses the last one that logged in here.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		return errAlreadyLoggedIn
	}

	last, _, err := a.meta.Get(ctx, common.MetaLastUser)
	if err != nil {
		a.log.Warn(ctx, "failed to read last user", "error", err)
	}

	prompt := "Enter username"
	if last != "" {
		prompt = fmt.Sprintf("Enter username [%s]", last)
	}
	username, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if username == "" {
		username = last
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ok, err := a.auth.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidCredentials
	}

	if err := a.meta.Set(ctx, common.MetaLastUser, username); err != nil {
		a.log.Warn(ctx, "failed to save last user", "error", err)
	}
	if err := a.lock.Start(); err != nil {
		return err
	}
	a.syncer.Trigger()

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Unlock runs the re-authentication challenge of a locked session. An empty
// password abandons it and terminates the session.
func (a *App) Unlock(ctx context.Context) error {
	username := a.session.Username()
	fmt.Fprintf(a.out, "Session is locked. Re-enter the password for %s (empty to quit).\n", username)

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if len(password) == 0 {
		if err := a.lock.Abandon(); err != nil {
			return err
		}
		return errSessionTerminated
	}

	ok, err := a.lock.Unlock(ctx, username, password)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidCredentials
	}

	fmt.Fprintln(a.out, "Unlocked")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrorUnauthorized
	}
	a.lock.Stop()
	a.session.Reset()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
