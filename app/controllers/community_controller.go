package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
	"github.com/verbumapp/verbum/app/repository"
	"github.com/verbumapp/verbum/internal/pkg/metrics/counter"
	"github.com/verbumapp/verbum/internal/pkg/usercontext"
	"github.com/verbumapp/verbum/internal/pkg/utils"
)

type postRequest struct {
	Content   string `json:"content"`
	Reference string `json:"reference"`
}

func postView(post *models.Post, liked bool) fiber.Map {
	authorName := post.User.Name
	avatar := post.User.AvatarURL
	if avatar == "" && post.User.Email != "" {
		avatar = utils.GetGravatarURL(post.User.Email, 200)
	}
	return fiber.Map{
		"id":            post.ID,
		"content":       post.Content,
		"reference":     post.Reference,
		"like_count":    post.LikeCount,
		"liked":         liked,
		"author_name":   authorName,
		"author_avatar": avatar,
		"created_at":    post.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleAPIPostList lists recent community posts. For logged in callers the
// posts they already liked are flagged.
func HandleAPIPostList(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetPostRepository()

	offset, limit := parsePagination(c, 20, 100)
	posts, err := repo.GetRecent(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load posts"})
	}
	total, err := repo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count posts"})
	}

	liked := map[uint]bool{}
	if userID := usercontext.GetUserID(c); userID != 0 && len(posts) > 0 {
		ids := make([]uint, 0, len(posts))
		for i := range posts {
			ids = append(ids, posts[i].ID)
		}
		liked, err = repo.LikedPostIDs(userID, ids)
		if err != nil {
			log.Warn().Err(err).Uint("user_id", userID).Msg("could not resolve liked posts")
			liked = map[uint]bool{}
		}
	}

	views := make([]fiber.Map, 0, len(posts))
	for i := range posts {
		views = append(views, postView(&posts[i], liked[posts[i].ID]))
	}
	return c.JSON(fiber.Map{"posts": views, "total": total})
}

// HandleAPIPostCreate publishes a community post for the caller.
func HandleAPIPostCreate(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid request body"})
	}

	post := &models.Post{
		UserID:    usercontext.GetUserID(c),
		Content:   req.Content,
		Reference: req.Reference,
	}
	repo := repository.GetGlobalFactory().GetPostRepository()
	if err := repo.Create(post); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	created, err := repo.GetByID(post.ID)
	if err != nil {
		created = post
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": postView(created, false)})
}

// HandleAPIPostLike toggles the caller's like on a post.
func HandleAPIPostLike(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Post id must be a positive number"})
	}

	repo := repository.GetGlobalFactory().GetPostRepository()
	if _, err := repo.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load post"})
	}

	liked, err := repo.ToggleLike(usercontext.GetUserID(c), uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to toggle like"})
	}

	if liked {
		if err := counter.AddPostView(uint(id)); err != nil {
			log.Warn().Err(err).Int("post_id", id).Msg("post interaction not counted")
		}
	}

	post, err := repo.GetByID(uint(id))
	if err != nil {
		return c.JSON(fiber.Map{"liked": liked})
	}
	return c.JSON(fiber.Map{"liked": liked, "like_count": post.LikeCount})
}
