package users

import (
	"context"

	"github.com/dmitrijs2005/datingapp/internal/server/models"
)

// Repository is the identity store: accounts, their roles and their
// external logins.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, userName string) (*models.User, error)
	ListWithRoles(ctx context.Context) ([]*models.UserWithRoles, error)
	GetRoles(ctx context.Context, userID int64) ([]models.RoleName, error)
	AddRoles(ctx context.Context, userID int64, roles []models.RoleName) error
	RemoveRoles(ctx context.Context, userID int64, roles []models.RoleName) error
	ListLogins(ctx context.Context, userID int64) ([]models.Login, error)
	RemoveLogin(ctx context.Context, userID int64, provider, key string) error
	Delete(ctx context.Context, userID int64) error
}
