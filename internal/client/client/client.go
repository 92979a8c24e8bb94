package client

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

// RemoteStore is the remote authoritative store as seen by the client.
type RemoteStore interface {
	// UpsertRecord writes fields under id. Repeating the call with the same
	// arguments leaves the remote state unchanged.
	UpsertRecord(ctx context.Context, id string, fields map[string]string) error

	// FindUserByUsername returns the credential or common.ErrorNotFound.
	FindUserByUsername(ctx context.Context, username string) (*models.UserCredential, error)

	// CreateUser stores a new credential. A duplicate username yields
	// common.ErrorUsernameTaken.
	CreateUser(ctx context.Context, user *models.UserCredential) error

	// Ping returns nil when the remote store is reachable and serving.
	Ping(ctx context.Context) error

	Close() error
}
