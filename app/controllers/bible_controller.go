package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/verbumapp/verbum/internal/pkg/bible"
	"github.com/verbumapp/verbum/internal/pkg/usercontext"
)

// HandleAPIBibleBooks lists the canon with chapter counts.
func HandleAPIBibleBooks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"books": bible.Books})
}

// HandleAPIBibleTranslations lists available translations with their
// required tiers, so clients can grey out what the caller cannot read.
func HandleAPIBibleTranslations(c *fiber.Ctx) error {
	type translationView struct {
		bible.Translation
		Accessible bool `json:"accessible"`
	}
	views := make([]translationView, 0, len(bible.Translations))
	for _, t := range bible.Translations {
		views = append(views, translationView{
			Translation: t,
			Accessible:  usercontext.CanAccess(c, t.RequiredTier),
		})
	}
	return c.JSON(fiber.Map{"translations": views})
}

// HandleAPIBibleChapter serves one chapter through the layered loader.
func HandleAPIBibleChapter(c *fiber.Ctx) error {
	if bibleService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Bible service is not configured"})
	}

	bookID := c.Params("book")
	chapter, err := c.ParamsInt("chapter")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Chapter must be a number"})
	}
	translationID := c.Query("translation")

	userCtx := usercontext.GetUserContext(c)
	result, err := bibleService.GetChapter(c.UserContext(), userCtx.Entitlement, userCtx.IsLoggedIn, bookID, chapter, translationID)
	if err != nil {
		switch {
		case errors.Is(err, bible.ErrUnknownBook), errors.Is(err, bible.ErrUnknownTranslation):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
		case errors.Is(err, bible.ErrInvalidChapter):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load chapter"})
		}
	}

	response := fiber.Map{
		"chapter": result.Chapter,
		"origin":  result.Origin,
	}
	if result.Denial != nil {
		response["denial"] = result.Denial
	}
	if bibleService.RemoteDown() {
		response["degraded"] = true
	}
	return c.JSON(response)
}
