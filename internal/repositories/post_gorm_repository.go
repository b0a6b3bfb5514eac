package repositories

import (
	"fmt"

	"blog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// Create creates a new post in the database.
func (r *GORMPostRepository) Create(post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post by its ID from the database.
func (r *GORMPostRepository) GetByID(id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("id %s: %w", id, ErrPostNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %s: %w", id, err)
	}
	return &post, nil
}

// Update updates an existing post in the database.
func (r *GORMPostRepository) Update(post *models.Post) error {
	res := r.db.Save(post) // Save writes all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound for an update that
		// matched nothing, so we check RowsAffected.
		return fmt.Errorf("id %s: %w", post.ID, ErrPostNotFound)
	}
	return nil
}

// Delete deletes a post by its ID from the database.
func (r *GORMPostRepository) Delete(id string) error {
	res := r.db.Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("id %s: %w", id, ErrPostNotFound)
	}
	return nil
}

// List retrieves a page of posts, newest first.
func (r *GORMPostRepository) List(offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// CountAll returns the total number of posts.
func (r *GORMPostRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// Search retrieves a page of posts whose title or content contains the keyword.
func (r *GORMPostRepository) Search(keyword string, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	pattern := "%" + keyword + "%"
	err := r.db.Where("title LIKE ? OR content LIKE ?", pattern, pattern).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search posts for %q: %w", keyword, err)
	}
	return posts, nil
}

// CountByKeyword returns the number of posts matching the keyword.
func (r *GORMPostRepository) CountByKeyword(keyword string) (int64, error) {
	var count int64
	pattern := "%" + keyword + "%"
	err := r.db.Model(&models.Post{}).
		Where("title LIKE ? OR content LIKE ?", pattern, pattern).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count posts for %q: %w", keyword, err)
	}
	return count, nil
}

// ListByAuthor retrieves all posts by the given author, newest first.
func (r *GORMPostRepository) ListByAuthor(authorID string) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Where("author_id = ?", authorID).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts by author %s: %w", authorID, err)
	}
	return posts, nil
}

// IncrementViewCount bumps the view counter by one. This runs as a separate
// statement from the read that returns the post, so the returned count can lag
// the stored one under concurrent fetches.
func (r *GORMPostRepository) IncrementViewCount(id string) error {
	err := r.db.Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("failed to increment view count for post %s: %w", id, err)
	}
	return nil
}
