package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
	"github.com/verbumapp/verbum/app/repository"
	"github.com/verbumapp/verbum/internal/pkg/usercontext"
)

type noteRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Reference string `json:"reference"`
}

// loadOwnNote fetches a note and enforces that it belongs to the caller.
func loadOwnNote(c *fiber.Ctx) (*models.Note, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Note id must be a positive number"})
	}

	repo := repository.GetGlobalFactory().GetNoteRepository()
	note, err := repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Note not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load note"})
	}
	if note.UserID != usercontext.GetUserID(c) {
		// Do not leak the existence of other users' notes.
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Note not found"})
	}
	return note, nil
}

// HandleAPINoteList lists the caller's notes.
func HandleAPINoteList(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	repo := repository.GetGlobalFactory().GetNoteRepository()

	offset, limit := parsePagination(c, 20, 100)
	notes, err := repo.GetByUserID(userID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load notes"})
	}
	total, err := repo.CountByUserID(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count notes"})
	}
	return c.JSON(fiber.Map{"notes": notes, "total": total})
}

// HandleAPINoteCreate creates a study note for the caller.
func HandleAPINoteCreate(c *fiber.Ctx) error {
	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid request body"})
	}

	note := &models.Note{
		UserID:    usercontext.GetUserID(c),
		Title:     req.Title,
		Content:   req.Content,
		Reference: req.Reference,
	}
	if err := repository.GetGlobalFactory().GetNoteRepository().Create(note); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"note": note})
}

// HandleAPINoteGet returns one of the caller's notes.
func HandleAPINoteGet(c *fiber.Ctx) error {
	note, err := loadOwnNote(c)
	if note == nil {
		return err
	}
	return c.JSON(fiber.Map{"note": note})
}

// HandleAPINoteUpdate updates one of the caller's notes.
func HandleAPINoteUpdate(c *fiber.Ctx) error {
	note, err := loadOwnNote(c)
	if note == nil {
		return err
	}

	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid request body"})
	}
	if req.Title != "" {
		note.Title = req.Title
	}
	if req.Content != "" {
		note.Content = req.Content
	}
	note.Reference = req.Reference

	if err := repository.GetGlobalFactory().GetNoteRepository().Update(note); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"note": note})
}

// HandleAPINoteDelete deletes one of the caller's notes.
func HandleAPINoteDelete(c *fiber.Ctx) error {
	note, err := loadOwnNote(c)
	if note == nil {
		return err
	}
	if err := repository.GetGlobalFactory().GetNoteRepository().Delete(note.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete note"})
	}
	return c.JSON(fiber.Map{"message": "note deleted"})
}
