package cli

import (
	"errors"

	"github.com/dmitrijs2005/offsync/internal/client/lock"
	"github.com/dmitrijs2005/offsync/internal/common"
)

var (
	errInvalidCredentials = errors.New("invalid username or password")
	errSessionTerminated  = errors.New("session terminated")
	errAlreadyLoggedIn    = errors.New("already logged in, log out first")
)

// userMessage turns an error into the line shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrorOffline):
		return "Server is offline, try again when connected"
	case errors.Is(err, common.ErrorUsernameTaken):
		return "Username is already taken"
	case errors.Is(err, common.ErrorUnauthorized):
		return "You need to be authenticated first"
	case errors.Is(err, common.ErrorSyncInProgress):
		return "A sync is already running"
	case errors.Is(err, common.ErrorNotFound):
		return "Record not found"
	case errors.Is(err, lock.ErrWrongUser):
		return "Only the user who owns the session can unlock it"
	case errors.Is(err, errInvalidCredentials):
		return "Invalid username or password"
	default:
		return "Error: " + err.Error()
	}
}
