package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/verbumapp/verbum/internal/pkg/metrics/counter"
)

// HandleAPIHymnList lists hymns, optionally filtered by a search query
// matching the title or the hymn number.
func HandleAPIHymnList(c *fiber.Ctx) error {
	if hymnalService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Hymnal service is not configured"})
	}

	query := c.Query("q")
	hymns, origin, err := hymnalService.Search(c.UserContext(), query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load hymnal"})
	}

	response := fiber.Map{
		"hymns":  hymns,
		"origin": origin,
		"total":  len(hymns),
	}
	if hymnalService.RemoteDown() {
		response["degraded"] = true
	}
	return c.JSON(response)
}

// HandleAPIHymnByNumber serves one hymn and counts the view.
func HandleAPIHymnByNumber(c *fiber.Ctx) error {
	if hymnalService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Hymnal service is not configured"})
	}

	number, err := c.ParamsInt("number")
	if err != nil || number < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Hymn number must be a positive number"})
	}

	hymn, origin, err := hymnalService.GetByNumber(c.UserContext(), number)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load hymn"})
	}
	if hymn == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Hymn not found"})
	}

	if hymn.ID != 0 {
		if err := counter.AddHymnView(hymn.ID); err != nil {
			log.Warn().Err(err).Int("number", number).Msg("hymn view not counted")
		}
	}

	return c.JSON(fiber.Map{"hymn": hymn, "origin": origin})
}
