package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/pkg/rabbitmq"
)

// PostInput carries the writable fields of a post.
type PostInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// PagedPosts is a page of post summaries with offset-pagination metadata.
// Pages are zero-based; TotalPages is the ceiling of TotalCount/size.
type PagedPosts struct {
	Posts       []models.PostSummary
	CurrentPage int
	TotalPages  int
	TotalCount  int64
}

// HasNext reports whether a later page exists.
func (p *PagedPosts) HasNext() bool {
	return p.CurrentPage < p.TotalPages-1
}

// HasPrevious reports whether an earlier page exists.
func (p *PagedPosts) HasPrevious() bool {
	return p.CurrentPage > 0
}

// PostService handles business logic for posts: CRUD, search and the
// ownership/role permission rules.
type PostService struct {
	postRepo  repositories.PostRepository
	publisher EventPublisher
}

// NewPostService creates a new PostService.
func NewPostService(postRepo repositories.PostRepository, publisher EventPublisher) *PostService {
	return &PostService{
		postRepo:  postRepo,
		publisher: publisher,
	}
}

// CreatePost stores a new post owned by the author. Author name and email are
// snapshotted onto the post at creation time.
func (s *PostService) CreatePost(input PostInput, author *models.User) (*models.Post, error) {
	post := &models.Post{
		Title:       input.Title,
		Content:     input.Content,
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.publishEvent("post.created", map[string]interface{}{
		"event":    "post.created",
		"postID":   post.ID,
		"authorID": post.AuthorID,
		"title":    post.Title,
	})

	return post, nil
}

// GetPost retrieves a post by ID and bumps its view counter. The increment is
// a separate statement and at-least-once; the returned count reflects this
// fetch but can lag the stored value under concurrent reads.
func (s *PostService) GetPost(id string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.IncrementViewCount(id); err != nil {
		return nil, err
	}
	post.ViewCount++
	return post, nil
}

// ListPosts retrieves a zero-based page of post summaries.
func (s *PostService) ListPosts(page, size int) (*PagedPosts, error) {
	posts, err := s.postRepo.List(page*size, size)
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.CountAll()
	if err != nil {
		return nil, err
	}
	return pageOf(posts, page, size, total), nil
}

// SearchPosts retrieves a zero-based page of posts whose title or content
// contains the keyword.
func (s *PostService) SearchPosts(keyword string, page, size int) (*PagedPosts, error) {
	posts, err := s.postRepo.Search(keyword, page*size, size)
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.CountByKeyword(keyword)
	if err != nil {
		return nil, err
	}
	return pageOf(posts, page, size, total), nil
}

// UpdatePost replaces the title and content of an existing post. Only the
// owner may update; the existence check runs before the permission check so a
// missing post is reported as not found to every caller. Concurrent updates
// are not coordinated: the last write wins.
func (s *PostService) UpdatePost(id string, input PostInput, actor *models.User) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, fmt.Errorf("update post %s: %w", id, ErrForbidden)
	}

	post.Title = input.Title
	post.Content = input.Content
	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post. The owner may delete their own posts; an admin
// may delete any post. As with update, existence is checked first.
func (s *PostService) DeletePost(id string, actor *models.User) error {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return err
	}

	switch actor.Role {
	case models.RoleAdmin:
		// admin override applies to delete only
	case models.RoleUser:
		if post.AuthorID != actor.ID {
			return fmt.Errorf("delete post %s: %w", id, ErrForbidden)
		}
	default:
		return fmt.Errorf("delete post %s: unknown role %q: %w", id, actor.Role, ErrForbidden)
	}

	if err := s.postRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent("post.deleted", map[string]interface{}{
		"event":     "post.deleted",
		"postID":    id,
		"deletedBy": actor.ID,
	})

	return nil
}

// PostsByAuthor retrieves all posts written by the given author.
func (s *PostService) PostsByAuthor(authorID string) ([]models.PostSummary, error) {
	posts, err := s.postRepo.ListByAuthor(authorID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.PostSummary, 0, len(posts))
	for i := range posts {
		summaries = append(summaries, posts[i].Summary())
	}
	return summaries, nil
}

func pageOf(posts []models.Post, page, size int, total int64) *PagedPosts {
	summaries := make([]models.PostSummary, 0, len(posts))
	for i := range posts {
		summaries = append(summaries, posts[i].Summary())
	}
	return &PagedPosts{
		Posts:       summaries,
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(size))),
		TotalCount:  total,
	}
}

func (s *PostService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish("", rabbitmq.EventsQueue, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
