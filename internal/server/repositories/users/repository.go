package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines the persistence operations the credential services need
// for user records. Save is a whole-record upsert keyed by user ID; the
// lookup methods return common.ErrorNotFound when no row matches.
type Repository interface {
	Save(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPasswordResetDigest(ctx context.Context, digest string) (*models.User, error)
}
