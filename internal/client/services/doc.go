// Package services contains the application services of the offsync client.
//
// Session holds the process-local authentication state. Authenticator
// registers and verifies credentials against the remote store. SyncEngine
// drains locally staged records into the remote store. RecordService is the
// entry point user actions use to stage new records.
//
// Every service receives its collaborators at construction so tests can
// substitute fakes for the remote store and the connectivity probe.
package services

import "context"

// OnlineChecker reports whether the remote store is reachable right now.
// connectivity.Oracle implements it.
type OnlineChecker interface {
	IsOnline(ctx context.Context) bool
}
