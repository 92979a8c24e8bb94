// Package records stores the authoritative copy of client records, either
// in PostgreSQL or as JSON objects in an S3-compatible bucket.
package records

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/server/models"
)

// Repository is idempotent by record ID: repeating an Upsert with the same
// payload leaves the store unchanged.
type Repository interface {
	Upsert(ctx context.Context, record *models.Record) error
	// Get returns the record or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Record, error)
}
