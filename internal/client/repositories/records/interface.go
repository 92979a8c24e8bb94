package records

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/client/models"
)

// Repository is the local cache store contract.
type Repository interface {
	// Put inserts rec unless a record with the same ID exists, in which case
	// it does nothing. The result reports whether a row was inserted.
	Put(ctx context.Context, rec *models.Record) (bool, error)

	// ListUnsynchronized returns every record whose synchronized flag is false,
	// oldest first (created_at, then id).
	ListUnsynchronized(ctx context.Context) ([]*models.Record, error)

	// MarkSynchronized sets the flag of exactly one record. It returns
	// common.ErrorNotFound when id is absent.
	MarkSynchronized(ctx context.Context, id string) error

	// GetByID returns one record or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Record, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]*models.Record, error)

	// CountUnsynchronized returns the size of the backlog.
	CountUnsynchronized(ctx context.Context) (int, error)
}
