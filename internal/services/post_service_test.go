package services_test

import (
	"fmt"
	"testing"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock implementation of repositories.PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(post *models.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(id string) (*models.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(post *models.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPostRepository) List(offset, limit int) ([]models.Post, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) CountAll() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Search(keyword string, offset, limit int) ([]models.Post, error) {
	args := m.Called(keyword, offset, limit)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) CountByKeyword(keyword string) (int64, error) {
	args := m.Called(keyword)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) ListByAuthor(authorID string) ([]models.Post, error) {
	args := m.Called(authorID)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) IncrementViewCount(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

var (
	alice = &models.User{ID: "user-alice", Email: "alice@x.com", Name: "Alice", Role: models.RoleUser}
	bob   = &models.User{ID: "user-bob", Email: "bob@x.com", Name: "Bob", Role: models.RoleUser}
	admin = &models.User{ID: "user-admin", Email: "admin@x.com", Name: "Admin", Role: models.RoleAdmin}
)

func alicePost() *models.Post {
	return &models.Post{
		ID:          "post-1",
		Title:       "Hi",
		Content:     "World",
		AuthorID:    alice.ID,
		AuthorName:  alice.Name,
		AuthorEmail: alice.Email,
	}
}

func notFoundErr(id string) error {
	return fmt.Errorf("id %s: %w", id, repositories.ErrPostNotFound)
}

func TestPostService_CreatePost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	service := services.NewPostService(mockRepo, nil)

	mockRepo.On("Create", mock.AnythingOfType("*models.Post")).Return(nil).Once()

	post, err := service.CreatePost(services.PostInput{Title: "Hi", Content: "World"}, alice)
	assert.NoError(t, err)
	assert.Equal(t, "Hi", post.Title)
	assert.Equal(t, alice.ID, post.AuthorID)
	// author snapshot captured at creation time
	assert.Equal(t, alice.Name, post.AuthorName)
	assert.Equal(t, alice.Email, post.AuthorEmail)
	assert.Equal(t, 0, post.ViewCount)
	mockRepo.AssertExpectations(t)
}

func TestPostService_GetPost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	service := services.NewPostService(mockRepo, nil)

	// A fetch bumps the view counter; increment and read are separate calls
	stored := alicePost()
	stored.ViewCount = 4
	mockRepo.On("GetByID", "post-1").Return(stored, nil).Once()
	mockRepo.On("IncrementViewCount", "post-1").Return(nil).Once()

	post, err := service.GetPost("post-1")
	assert.NoError(t, err)
	assert.Equal(t, 5, post.ViewCount)
	mockRepo.AssertExpectations(t)

	// Missing post
	mockRepo.On("GetByID", "post-99").Return(nil, notFoundErr("post-99")).Once()
	_, err = service.GetPost("post-99")
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)
	mockRepo.AssertNotCalled(t, "IncrementViewCount", "post-99")
	mockRepo.AssertExpectations(t)
}

func TestPostService_UpdatePost_Permissions(t *testing.T) {
	mockRepo := new(MockPostRepository)
	service := services.NewPostService(mockRepo, nil)

	// The owner can update
	mockRepo.On("GetByID", "post-1").Return(alicePost(), nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Post")).Return(nil).Once()
	post, err := service.UpdatePost("post-1", services.PostInput{Title: "New", Content: "Body"}, alice)
	assert.NoError(t, err)
	assert.Equal(t, "New", post.Title)
	assert.Equal(t, "Body", post.Content)
	mockRepo.AssertExpectations(t)

	// Another user cannot update
	mockRepo.On("GetByID", "post-1").Return(alicePost(), nil).Once()
	_, err = service.UpdatePost("post-1", services.PostInput{Title: "New", Content: "Body"}, bob)
	assert.ErrorIs(t, err, services.ErrForbidden)
	mockRepo.AssertExpectations(t)

	// The admin override does not extend to update
	mockRepo.On("GetByID", "post-1").Return(alicePost(), nil).Once()
	_, err = service.UpdatePost("post-1", services.PostInput{Title: "New", Content: "Body"}, admin)
	assert.ErrorIs(t, err, services.ErrForbidden)
	mockRepo.AssertExpectations(t)

	// A missing post is not found for every caller, never forbidden
	mockRepo.On("GetByID", "post-99").Return(nil, notFoundErr("post-99")).Twice()
	_, err = service.UpdatePost("post-99", services.PostInput{Title: "New", Content: "Body"}, bob)
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)
	assert.NotErrorIs(t, err, services.ErrForbidden)
	_, err = service.UpdatePost("post-99", services.PostInput{Title: "New", Content: "Body"}, alice)
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)
	mockRepo.AssertExpectations(t)
}

func TestPostService_DeletePost_Permissions(t *testing.T) {
	mockRepo := new(MockPostRepository)
	service := services.NewPostService(mockRepo, nil)

	// The owner can delete
	mockRepo.On("GetByID", "post-1").Return(alicePost(), nil).Once()
	mockRepo.On("Delete", "post-1").Return(nil).Once()
	assert.NoError(t, service.DeletePost("post-1", alice))
	mockRepo.AssertExpectations(t)

	// An admin can delete a post they do not own
	mockRepo.On("GetByID", "post-1").Return(alicePost(), nil).Once()
	mockRepo.On("Delete", "post-1").Return(nil).Once()
	assert.NoError(t, service.DeletePost("post-1", admin))
	mockRepo.AssertExpectations(t)

	// A non-admin non-owner cannot delete
	mockRepo.On("GetByID", "post-1").Return(alicePost(), nil).Once()
	err := service.DeletePost("post-1", bob)
	assert.ErrorIs(t, err, services.ErrForbidden)
	mockRepo.AssertExpectations(t)

	// An unknown role denies
	stranger := &models.User{ID: "user-x", Role: models.Role("SUPERVISOR")}
	mockRepo.On("GetByID", "post-1").Return(alicePost(), nil).Once()
	assert.ErrorIs(t, service.DeletePost("post-1", stranger), services.ErrForbidden)
	mockRepo.AssertExpectations(t)

	// A missing post is not found regardless of caller identity
	mockRepo.On("GetByID", "post-99").Return(nil, notFoundErr("post-99")).Twice()
	err = service.DeletePost("post-99", bob)
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)
	assert.NotErrorIs(t, err, services.ErrForbidden)
	assert.ErrorIs(t, service.DeletePost("post-99", admin), repositories.ErrPostNotFound)
	mockRepo.AssertExpectations(t)
}

func TestPostService_ListPosts_Pagination(t *testing.T) {
	mockRepo := new(MockPostRepository)
	service := services.NewPostService(mockRepo, nil)

	// 25 posts, size 10: page 0 has 10 posts, 3 pages total
	firstPage := make([]models.Post, 10)
	mockRepo.On("List", 0, 10).Return(firstPage, nil).Once()
	mockRepo.On("CountAll").Return(int64(25), nil).Once()

	result, err := service.ListPosts(0, 10)
	assert.NoError(t, err)
	assert.Len(t, result.Posts, 10)
	assert.Equal(t, 0, result.CurrentPage)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, int64(25), result.TotalCount)
	assert.True(t, result.HasNext())
	assert.False(t, result.HasPrevious())
	mockRepo.AssertExpectations(t)

	// Last page holds the remainder
	lastPage := make([]models.Post, 5)
	mockRepo.On("List", 20, 10).Return(lastPage, nil).Once()
	mockRepo.On("CountAll").Return(int64(25), nil).Once()

	result, err = service.ListPosts(2, 10)
	assert.NoError(t, err)
	assert.Len(t, result.Posts, 5)
	assert.False(t, result.HasNext())
	assert.True(t, result.HasPrevious())
	mockRepo.AssertExpectations(t)
}

func TestPostService_SearchPosts(t *testing.T) {
	mockRepo := new(MockPostRepository)
	service := services.NewPostService(mockRepo, nil)

	matches := []models.Post{*alicePost()}
	mockRepo.On("Search", "Hi", 0, 10).Return(matches, nil).Once()
	mockRepo.On("CountByKeyword", "Hi").Return(int64(1), nil).Once()

	result, err := service.SearchPosts("Hi", 0, 10)
	assert.NoError(t, err)
	assert.Len(t, result.Posts, 1)
	assert.Equal(t, "Hi", result.Posts[0].Title)
	assert.Equal(t, 1, result.TotalPages)
	assert.False(t, result.HasNext())
	mockRepo.AssertExpectations(t)
}

func TestPostService_PostsByAuthor(t *testing.T) {
	mockRepo := new(MockPostRepository)
	service := services.NewPostService(mockRepo, nil)

	mockRepo.On("ListByAuthor", alice.ID).Return([]models.Post{*alicePost()}, nil).Once()

	posts, err := service.PostsByAuthor(alice.ID)
	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, alice.Email, posts[0].AuthorEmail)
	mockRepo.AssertExpectations(t)
}
