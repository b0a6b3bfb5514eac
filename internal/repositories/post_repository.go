package repositories

import (
	"errors"

	"blog/internal/models"
)

// ErrPostNotFound is wrapped by implementations when a lookup misses.
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the interface for post data access.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id string) (*models.Post, error)
	Update(post *models.Post) error
	Delete(id string) error
	List(offset, limit int) ([]models.Post, error)
	CountAll() (int64, error)
	Search(keyword string, offset, limit int) ([]models.Post, error)
	CountByKeyword(keyword string) (int64, error)
	ListByAuthor(authorID string) ([]models.Post, error)
	IncrementViewCount(id string) error
}
