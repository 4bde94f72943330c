package repositories

import (
	"context"

	"flavorfix/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// List returns every user, newest first.
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}
