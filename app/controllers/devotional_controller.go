package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
	"github.com/verbumapp/verbum/app/repository"
	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/metrics/counter"
	"github.com/verbumapp/verbum/internal/pkg/usercontext"
)

// devotionalView renders a devotional with the extended commentary stripped
// when the caller is not entitled to it.
func devotionalView(c *fiber.Ctx, dev *models.Devotional) fiber.Map {
	view := fiber.Map{
		"id":         dev.ID,
		"title":      dev.Title,
		"slug":       dev.Slug,
		"reference":  dev.Reference,
		"body":       dev.Body,
		"premium":    dev.Premium,
		"view_count": dev.ViewCount,
		"created_at": dev.CreatedAt.UTC().Format(time.RFC3339),
	}
	if dev.Extended == "" {
		return view
	}
	if !dev.Premium || usercontext.CanAccess(c, entitlements.TierPremium) {
		view["extended"] = dev.Extended
	} else {
		view["extended_locked"] = true
		view["required_tier"] = entitlements.TierPremium
	}
	return view
}

// HandleAPIDevotionalToday serves the devotional of the day. The pick is
// deterministic per calendar day so every reader sees the same reading.
func HandleAPIDevotionalToday(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetDevotionalRepository()

	total, err := repo.CountPublished()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load devotionals"})
	}
	if total == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "No devotional published yet"})
	}

	dayIndex := int(time.Now().UTC().Unix()/86400) % int(total)
	devotionals, err := repo.GetPublished(dayIndex, 1)
	if err != nil || len(devotionals) == 0 {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load devotional of the day"})
	}
	dev := &devotionals[0]

	if err := counter.AddDevotionalView(dev.ID); err != nil {
		log.Warn().Err(err).Uint("devotional_id", dev.ID).Msg("devotional view not counted")
	}

	return c.JSON(fiber.Map{"devotional": devotionalView(c, dev)})
}

// HandleAPIDevotionalList lists published devotionals, newest batch first.
func HandleAPIDevotionalList(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetDevotionalRepository()

	offset, limit := parsePagination(c, 20, 100)
	devotionals, err := repo.GetPublished(offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load devotionals"})
	}
	total, err := repo.CountPublished()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count devotionals"})
	}

	views := make([]fiber.Map, 0, len(devotionals))
	for i := range devotionals {
		views = append(views, devotionalView(c, &devotionals[i]))
	}
	return c.JSON(fiber.Map{"devotionals": views, "total": total})
}

// HandleAPIDevotionalBySlug serves one devotional and counts the view.
func HandleAPIDevotionalBySlug(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetDevotionalRepository()

	dev, err := repo.GetBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Devotional not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load devotional"})
	}
	if !dev.Published && !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Devotional not found"})
	}

	if err := counter.AddDevotionalView(dev.ID); err != nil {
		log.Warn().Err(err).Uint("devotional_id", dev.ID).Msg("devotional view not counted")
	}

	return c.JSON(fiber.Map{"devotional": devotionalView(c, dev)})
}
