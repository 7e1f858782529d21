package controllers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/verbumapp/verbum/internal/pkg/cache"
	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/usercontext"
)

// Expert levels for assistant answers, ordered by required tier.
const (
	ExpertLevelLay      = "leigo"
	ExpertLevelStudent  = "estudante"
	ExpertLevelBachelor = "bacharel"
	ExpertLevelDoctor   = "doutor"
)

// Daily question allowances per tier. Premium is unlimited.
const (
	assistantFreeQuota  = 5
	assistantBasicQuota = 20
)

type assistantRequest struct {
	Question    string `json:"question"`
	ExpertLevel string `json:"expert_level"`
}

var assistantAnswers = map[string]string{
	ExpertLevelDoctor:   "Esta é uma resposta detalhada e acadêmica com referências extensas sobre a sua pergunta teológica.",
	ExpertLevelBachelor: "Esta é uma resposta mais técnica com terminologia teológica sobre a sua pergunta.",
	ExpertLevelStudent:  "Esta é uma resposta moderadamente detalhada sobre a sua pergunta teológica.",
	ExpertLevelLay:      "Esta é uma resposta simples e acessível sobre a sua pergunta teológica, explicada de forma que qualquer pessoa possa entender.",
}

// SuggestedQuestions are shown to clients as conversation starters.
var SuggestedQuestions = []string{
	"O que a Bíblia ensina sobre graça?",
	"Explique a doutrina da Trindade.",
	"Qual o significado da ressurreição de Cristo?",
	"O que são os dons do Espírito Santo?",
	"Explique o livro de Apocalipse.",
}

func expertLevelTier(level string) (entitlements.Tier, bool) {
	switch level {
	case "", ExpertLevelLay:
		return entitlements.TierFree, true
	case ExpertLevelStudent:
		return entitlements.TierBasic, true
	case ExpertLevelBachelor, ExpertLevelDoctor:
		return entitlements.TierPremium, true
	default:
		return entitlements.TierFree, false
	}
}

func assistantQuota(tier entitlements.Tier) int {
	switch entitlements.NormalizeTier(string(tier)) {
	case entitlements.TierPremium:
		return 0
	case entitlements.TierBasic:
		return assistantBasicQuota
	default:
		return assistantFreeQuota
	}
}

// consumeAssistantQuestion counts one question against the caller's daily
// allowance. Remaining is -1 when the allowance is unlimited.
func consumeAssistantQuestion(ctx context.Context, userID uint, quota int) (remaining int, allowed bool, err error) {
	if quota <= 0 {
		return -1, true, nil
	}

	key := fmt.Sprintf("assistant:questions:%d:%s", userID, time.Now().UTC().Format("2006-01-02"))
	client := cache.GetClient()

	used, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	if used == 1 {
		client.Expire(ctx, key, 24*time.Hour)
	}
	if int(used) > quota {
		return 0, false, nil
	}
	return quota - int(used), true, nil
}

// HandleAPIAssistantAsk answers a theological question at the requested
// expert depth. Higher levels and larger daily allowances are paid features.
func HandleAPIAssistantAsk(c *fiber.Ctx) error {
	var req assistantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid request body"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Question must not be empty"})
	}

	level := req.ExpertLevel
	if level == "" {
		level = ExpertLevelLay
	}
	requiredTier, known := expertLevelTier(level)
	if !known {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Unknown expert level"})
	}
	if !usercontext.CanAccess(c, requiredTier) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":         "subscription_required",
			"message":       "This expert level requires a subscription",
			"required_tier": requiredTier,
		})
	}

	userCtx := usercontext.GetUserContext(c)
	quota := assistantQuota(userCtx.Entitlement.Tier)
	remaining, allowed, err := consumeAssistantQuestion(c.UserContext(), userCtx.UserID, quota)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", userCtx.UserID).Msg("assistant quota check failed, allowing question")
		remaining, allowed = -1, true
	}
	if !allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":   "quota_exceeded",
			"message": "Daily question limit reached, upgrade your plan to continue",
		})
	}

	return c.JSON(fiber.Map{
		"answer":              assistantAnswers[level],
		"expert_level":        level,
		"remaining_questions": remaining,
	})
}

// HandleAPIAssistantSuggestions returns canned conversation starters.
func HandleAPIAssistantSuggestions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"suggestions": SuggestedQuestions})
}
