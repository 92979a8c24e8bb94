package users

import (
	"context"

	"github.com/dmitrijs2005/offsync/internal/server/models"
)

type Repository interface {
	// Create inserts user. A taken username yields common.ErrorUsernameTaken.
	Create(ctx context.Context, user *models.User) error
	// GetByUsername returns the user or common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
