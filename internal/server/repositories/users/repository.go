// Package users is the credential store: the registered-user collection
// kept as one JSON array in the persistence substrate.
package users

import (
	"context"

	"github.com/dmitrijs2005/tripauth/internal/server/models"
)

// Repository reads and appends user records. Lookups that miss return
// common.ErrorNotFound.
type Repository interface {
	// FindByEmail matches on the trimmed, lower-cased form of email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPublicID(ctx context.Context, publicID string) (*models.User, error)
	// Insert appends u. The caller checks email uniqueness first.
	Insert(ctx context.Context, u *models.User) error
	Count(ctx context.Context) (int, error)
}
