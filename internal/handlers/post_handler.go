package handlers

import (
	"errors"
	"fmt"
	"log"

	"blog/internal/middleware"
	"blog/internal/repositories"
	"blog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	postService *services.PostService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postService *services.PostService, authService *services.AuthService) *PostHandler {
	return &PostHandler{
		postService: postService,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the post routes with the Fiber app. Reads are
// public; mutations and /my require a resolved identity. The literal routes
// must be registered before the :id routes.
func (h *PostHandler) RegisterRoutes(router fiber.Router) {
	auth := middleware.AuthRequired(h.authService)

	postRoutes := router.Group("/posts")
	postRoutes.Get("/", h.HandleListPosts)
	postRoutes.Get("/search", h.HandleSearchPosts)
	postRoutes.Get("/my", auth, h.HandleMyPosts)
	postRoutes.Get("/:id", h.HandleGetPost)
	postRoutes.Post("/", auth, h.HandleCreatePost)
	postRoutes.Put("/:id", auth, h.HandleUpdatePost)
	postRoutes.Delete("/:id", auth, h.HandleDeletePost)
}

// HandleListPosts returns a page of post summaries.
func (h *PostHandler) HandleListPosts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 10)
	if page < 0 || size < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "page must be >= 0 and size must be >= 1",
		})
	}

	result, err := h.postService.ListPosts(page, size)
	if err != nil {
		log.Printf("Error listing posts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not retrieve posts",
		})
	}
	return c.JSON(pagedResponse(result))
}

// HandleSearchPosts returns a page of posts matching the keyword.
func (h *PostHandler) HandleSearchPosts(c *fiber.Ctx) error {
	keyword := c.Query("keyword")
	if keyword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "keyword is required",
		})
	}
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 10)
	if page < 0 || size < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "page must be >= 0 and size must be >= 1",
		})
	}

	result, err := h.postService.SearchPosts(keyword, page, size)
	if err != nil {
		log.Printf("Error searching posts for %q: %v", keyword, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not search posts",
		})
	}

	response := pagedResponse(result)
	response["keyword"] = keyword
	return c.JSON(response)
}

// HandleGetPost returns a single post and bumps its view counter.
func (h *PostHandler) HandleGetPost(c *fiber.Ctx) error {
	id := c.Params("id")
	post, err := h.postService.GetPost(id)
	if err != nil {
		return h.postError(c, err, "Could not retrieve post")
	}
	return c.JSON(fiber.Map{
		"post": post,
	})
}

// HandleMyPosts returns all posts of the acting user.
func (h *PostHandler) HandleMyPosts(c *fiber.Ctx) error {
	currentUser := middleware.CurrentUser(c)
	posts, err := h.postService.PostsByAuthor(currentUser.ID)
	if err != nil {
		log.Printf("Error listing posts for user %s: %v", currentUser.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not retrieve your posts",
		})
	}
	return c.JSON(fiber.Map{
		"posts":         posts,
		"totalElements": len(posts),
	})
}

// HandleCreatePost creates a new post owned by the acting user.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	var input services.PostInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing create post request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := h.validationErrors(input); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"errors": errs,
		})
	}

	currentUser := middleware.CurrentUser(c)
	post, err := h.postService.CreatePost(input, currentUser)
	if err != nil {
		log.Printf("Error creating post for user %s: %v", currentUser.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create post",
		})
	}

	return c.JSON(fiber.Map{
		"post":    post,
		"message": "Post created successfully",
	})
}

// HandleUpdatePost updates an existing post; only the owner may update it.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	id := c.Params("id")
	var input services.PostInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing update post request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := h.validationErrors(input); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"errors": errs,
		})
	}

	currentUser := middleware.CurrentUser(c)
	post, err := h.postService.UpdatePost(id, input, currentUser)
	if err != nil {
		return h.postError(c, err, "Could not update post")
	}

	return c.JSON(fiber.Map{
		"post":    post,
		"message": "Post updated successfully",
	})
}

// HandleDeletePost deletes a post; the owner or an admin may delete it.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	id := c.Params("id")
	currentUser := middleware.CurrentUser(c)

	if err := h.postService.DeletePost(id, currentUser); err != nil {
		return h.postError(c, err, "Could not delete post")
	}

	return c.JSON(fiber.Map{
		"message": "Post deleted successfully",
	})
}

// postError maps domain errors to statuses: missing posts are 404 for every
// caller, permission violations 403, everything else a logged 500 with a
// generic message.
func (h *PostHandler) postError(c *fiber.Ctx, err error, genericMessage string) error {
	switch {
	case errors.Is(err, repositories.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You do not have permission for this post",
		})
	default:
		log.Printf("Post handler error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": genericMessage,
		})
	}
}

func (h *PostHandler) validationErrors(req interface{}) map[string]string {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return errorMessages
}

func pagedResponse(result *services.PagedPosts) fiber.Map {
	return fiber.Map{
		"posts":         result.Posts,
		"currentPage":   result.CurrentPage,
		"totalPages":    result.TotalPages,
		"totalElements": result.TotalCount,
		"hasNext":       result.HasNext(),
		"hasPrevious":   result.HasPrevious(),
	}
}
