package controllers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sujit-baniya/flash"

	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/jobqueue"
	"github.com/verbumapp/verbum/internal/pkg/payments"
	"github.com/verbumapp/verbum/internal/pkg/subscription"
	"github.com/verbumapp/verbum/internal/pkg/usercontext"
)

const plansPath = "/planos"

// confirmFailedMessage is shown when the provider redirect looks successful
// but the activation could not be confirmed server-side. It must tell the
// user the charge may already have gone through and how to resolve it.
const confirmFailedMessage = "Seu pagamento pode ter sido aprovado, mas não conseguimos confirmar a ativação da assinatura. Tente novamente em alguns minutos pela página de planos ou contate o suporte informando o e-mail da sua conta."

type checkoutRequest struct {
	Plan      string `json:"plan"`
	ReturnURL string `json:"return_url"`
}

// HandleAPIPlans returns the subscription catalog.
func HandleAPIPlans(c *fiber.Ctx) error {
	type planView struct {
		Tier        entitlements.Tier `json:"tier"`
		Name        string            `json:"name"`
		PriceBRL    float64           `json:"price_brl"`
		Description string            `json:"description"`
		Features    []string          `json:"features"`
	}

	basicPrice, basicName := payments.PlanPrice(entitlements.TierBasic)
	premiumPrice, premiumName := payments.PlanPrice(entitlements.TierPremium)

	plans := []planView{
		{
			Tier:        entitlements.TierFree,
			Name:        "Plano Gratuito",
			PriceBRL:    0,
			Description: "Recursos básicos",
			Features: []string{
				"Leitura da Bíblia (ACF)",
				"Harpa Cristã (visualização)",
				"Pão Diário (devocional do dia)",
				"IA Teológica (5 perguntas/dia)",
			},
		},
		{
			Tier:        entitlements.TierBasic,
			Name:        basicName,
			PriceBRL:    basicPrice,
			Description: "Para estudo pessoal",
			Features: []string{
				"IA Teológica (20 perguntas/dia)",
				"Anotações com categorização",
				"Todas as versões bíblicas",
				"Rascunhos de sermão",
			},
		},
		{
			Tier:        entitlements.TierPremium,
			Name:        premiumName,
			PriceBRL:    premiumPrice,
			Description: "Acesso completo",
			Features: []string{
				"IA Teológica ilimitada",
				"Devocionais com comentário estendido",
				"Todas as versões bíblicas",
				"Todos os recursos do plano básico",
			},
		},
	}
	return c.JSON(fiber.Map{"plans": plans})
}

// HandleAPISubscription returns the caller's reconciled entitlement.
func HandleAPISubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	response := fiber.Map{"entitlement": userCtx.Entitlement}
	if userCtx.PersistWarn {
		response["warning"] = "subscription state could not be persisted; access continues from memory"
	}
	return c.JSON(response)
}

// HandleAPICheckout starts a checkout round-trip and returns the provider
// redirect URL.
func HandleAPICheckout(c *fiber.Ctx) error {
	if checkoutHandler == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Checkout is not configured"})
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid request body"})
	}
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = c.BaseURL() + plansPath
	}

	plan := entitlements.NormalizeTier(req.Plan)
	initPoint, err := checkoutHandler.Initiate(c.UserContext(), usercontext.GetUserID(c), plan, returnURL)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrAuthRequired):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login is required to subscribe"})
		case errors.Is(err, payments.ErrInvalidPlan):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_plan", "message": "Plan must be basic or premium"})
		default:
			log.Error().Err(err).Msg("checkout initiation failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "provider_error", "message": "Could not start the checkout"})
		}
	}
	return c.JSON(fiber.Map{"init_point": initPoint})
}

// HandlePaymentCallback resolves the provider redirect in the browser. The
// outcome is surfaced as a flash message and the query parameters are
// stripped by redirecting to the clean plans URL.
func HandlePaymentCallback(c *fiber.Ctx) error {
	if c.Query("status") == "" {
		// Clean URL after the redirect: serve the stored flash outcome.
		return c.JSON(fiber.Map{"flash": flash.Get(c)})
	}
	if checkoutHandler == nil {
		return c.Redirect(plansPath, fiber.StatusSeeOther)
	}

	q := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		q.Set(string(key), string(value))
	})

	outcome := checkoutHandler.Resolve(c.UserContext(), q)
	switch outcome.State {
	case payments.CallbackActivated:
		msg := "Assinatura ativada com sucesso!"
		if outcome.PersistWarning {
			msg = "Assinatura ativada. A confirmação definitiva pode levar alguns minutos."
		}
		return flash.WithSuccess(c, fiber.Map{"type": "success", "message": msg}).Redirect(plansPath, fiber.StatusSeeOther)
	case payments.CallbackPending:
		return flash.WithInfo(c, fiber.Map{"type": "info", "message": "Pagamento pendente. Você receberá uma confirmação quando for aprovado."}).Redirect(plansPath, fiber.StatusSeeOther)
	case payments.CallbackFailed:
		return flash.WithError(c, fiber.Map{"type": "error", "message": "O pagamento não foi concluído. Tente novamente."}).Redirect(plansPath, fiber.StatusSeeOther)
	case payments.CallbackConfirmFailed:
		return flash.WithError(c, fiber.Map{"type": "error", "message": confirmFailedMessage}).Redirect(plansPath, fiber.StatusSeeOther)
	default:
		return c.Redirect(plansPath, fiber.StatusSeeOther)
	}
}

// HandleAPICancel deactivates the caller's subscription.
func HandleAPICancel(c *fiber.Ctx) error {
	if subscriptionStore == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Subscriptions are not configured"})
	}

	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	ent, err := subscriptionStore.Cancel(c.UserContext(), userCtx.UserID)
	if err != nil && !errors.Is(err, subscription.ErrPersistUnavailable) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to cancel subscription"})
	}

	response := fiber.Map{"entitlement": ent}
	if errors.Is(err, subscription.ErrPersistUnavailable) {
		response["warning"] = "cancellation could not be persisted yet"
	}
	return c.JSON(response)
}

// HandlePaymentWebhook ingests provider webhook notifications. Events are
// persisted exactly once and applied asynchronously by the job queue.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	if webhookService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Webhooks are not configured"})
	}

	payload := c.Body()
	signatureValid := payments.VerifyWebhookSignature(payload, c.Get("X-Signature"), webhookSecret)

	created, event, err := webhookService.Record(c.UserContext(), payments.WebhookEventInput{
		Provider:        "mercadopago",
		ProviderEventID: c.Get("X-Request-Id"),
		EventType:       c.Query("type"),
		PayloadJSON:     string(payload),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		log.Error().Err(err).Msg("webhook event could not be recorded")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to record event"})
	}

	if created {
		if _, err := jobqueue.EnqueueWebhookProcess(event.ID); err != nil {
			// The retry worker picks up unprocessed events later.
			log.Warn().Err(err).Uint("event_id", event.ID).Msg("webhook job not enqueued")
		}
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"received": true, "duplicate": !created})
}
