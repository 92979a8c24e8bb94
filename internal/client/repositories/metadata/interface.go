// Package metadata is a small key/value store in the client's local
// database. It keeps bookkeeping that is not part of any record, such as
// the time of the last complete sync and the last signed-in username.
package metadata

import (
	"context"
	"time"
)

// Repository stores string values by key.
type Repository interface {
	// Get returns the value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key string, value string) error

	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// GetTime reads an RFC3339 timestamp. Absent keys yield the zero time.
	GetTime(ctx context.Context, key string) (time.Time, error)

	// SetTime stores t as an RFC3339 timestamp in UTC.
	SetTime(ctx context.Context, key string, t time.Time) error
}
