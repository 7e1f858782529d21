package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
	"github.com/verbumapp/verbum/app/repository"
	"github.com/verbumapp/verbum/internal/pkg/usercontext"
)

type sermonRequest struct {
	Title     string `json:"title"`
	Reference string `json:"reference"`
	Outline   string `json:"outline"`
	Body      string `json:"body"`
	Status    string `json:"status"`
}

func loadOwnSermon(c *fiber.Ctx) (*models.Sermon, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Sermon id must be a positive number"})
	}

	repo := repository.GetGlobalFactory().GetSermonRepository()
	sermon, err := repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Sermon not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load sermon"})
	}
	if sermon.UserID != usercontext.GetUserID(c) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Sermon not found"})
	}
	return sermon, nil
}

// HandleAPISermonList lists the caller's sermon drafts.
func HandleAPISermonList(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetSermonRepository()

	offset, limit := parsePagination(c, 20, 100)
	sermons, err := repo.GetByUserID(usercontext.GetUserID(c), offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load sermons"})
	}
	return c.JSON(fiber.Map{"sermons": sermons, "total": len(sermons)})
}

// HandleAPISermonCreate creates a sermon draft for the caller.
func HandleAPISermonCreate(c *fiber.Ctx) error {
	var req sermonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid request body"})
	}

	status := req.Status
	if status == "" {
		status = models.SermonStatusDraft
	}
	sermon := &models.Sermon{
		UserID:    usercontext.GetUserID(c),
		Title:     req.Title,
		Reference: req.Reference,
		Outline:   req.Outline,
		Body:      req.Body,
		Status:    status,
	}
	if err := repository.GetGlobalFactory().GetSermonRepository().Create(sermon); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"sermon": sermon})
}

// HandleAPISermonGet returns one of the caller's sermons.
func HandleAPISermonGet(c *fiber.Ctx) error {
	sermon, err := loadOwnSermon(c)
	if sermon == nil {
		return err
	}
	return c.JSON(fiber.Map{"sermon": sermon})
}

// HandleAPISermonUpdate updates one of the caller's sermons.
func HandleAPISermonUpdate(c *fiber.Ctx) error {
	sermon, err := loadOwnSermon(c)
	if sermon == nil {
		return err
	}

	var req sermonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid request body"})
	}
	if req.Title != "" {
		sermon.Title = req.Title
	}
	sermon.Reference = req.Reference
	sermon.Outline = req.Outline
	sermon.Body = req.Body
	if req.Status != "" {
		sermon.Status = req.Status
	}

	if err := repository.GetGlobalFactory().GetSermonRepository().Update(sermon); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"sermon": sermon})
}

// HandleAPISermonDelete deletes one of the caller's sermons.
func HandleAPISermonDelete(c *fiber.Ctx) error {
	sermon, err := loadOwnSermon(c)
	if sermon == nil {
		return err
	}
	if err := repository.GetGlobalFactory().GetSermonRepository().Delete(sermon.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete sermon"})
	}
	return c.JSON(fiber.Map{"message": "sermon deleted"})
}
