package repositories

import (
	"errors"

	"blog/internal/models"
)

// ErrUserNotFound is wrapped by implementations when a lookup misses.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
}
