// Package common defines shared constants and sentinel errors used across
// client and server layers of offsync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorValidation    = errors.New("validation error")
	ErrorUsernameTaken = errors.New("username already taken")

	// Connectivity and remote store errors.
	ErrorOffline     = errors.New("remote store is offline")
	ErrorRemoteWrite = errors.New("remote store request failed")

	// Sync flow control.
	ErrorSyncInProgress = errors.New("sync cycle already in progress")
)
