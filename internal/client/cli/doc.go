// Package cli is the interactive host of the offsync client.
//
// App wires the local cache, the remote store client, the connectivity
// oracle, the authenticator, the sync engine and the inactivity lock, then
// runs a line-oriented REPL. Every entered line counts as user activity.
// Background goroutines refresh the online indicator, run periodic sync
// cycles and optionally serve Prometheus metrics.
//
// When the session locks, the next entered line starts a re-authentication
// challenge; submitting an empty password abandons it and ends the program.
package cli
