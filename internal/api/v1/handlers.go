package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/verbumapp/verbum/app/controllers"
	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/middleware"
)

// APIServer carries the versioned API surface.
type APIServer struct{}

func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
}

// RegisterHandlers wires all v1 routes. Write access and paid features are
// guarded here; controllers only enforce ownership and content gating.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	// Accounts and sessions
	auth := router.Group("/auth")
	auth.Post("/register", controllers.HandleAPIRegister)
	auth.Post("/login", controllers.HandleAPILogin)
	auth.Post("/logout", middleware.RequireAPISessionAuth, controllers.HandleAPILogout)
	auth.Get("/me", middleware.RequireAPISessionAuth, controllers.HandleAPIMe)

	// Bible
	bible := router.Group("/bible")
	bible.Get("/books", controllers.HandleAPIBibleBooks)
	bible.Get("/translations", controllers.HandleAPIBibleTranslations)
	bible.Get("/:book/:chapter", controllers.HandleAPIBibleChapter)

	// Hymnal
	router.Get("/hymns", controllers.HandleAPIHymnList)
	router.Get("/hymns/:number", controllers.HandleAPIHymnByNumber)

	// Devotionals
	router.Get("/devotionals", controllers.HandleAPIDevotionalList)
	router.Get("/devotionals/today", controllers.HandleAPIDevotionalToday)
	router.Get("/devotionals/:slug", controllers.HandleAPIDevotionalBySlug)

	// Study notes (owner only)
	notes := router.Group("/notes", middleware.RequireAPISessionAuth)
	notes.Get("/", controllers.HandleAPINoteList)
	notes.Post("/", controllers.HandleAPINoteCreate)
	notes.Get("/:id", controllers.HandleAPINoteGet)
	notes.Put("/:id", controllers.HandleAPINoteUpdate)
	notes.Delete("/:id", controllers.HandleAPINoteDelete)

	// Community feed
	router.Get("/posts", controllers.HandleAPIPostList)
	router.Post("/posts", middleware.RequireAPISessionAuth, controllers.HandleAPIPostCreate)
	router.Post("/posts/:id/like", middleware.RequireAPISessionAuth, controllers.HandleAPIPostLike)

	// Sermon drafting is a paid feature
	sermons := router.Group("/sermons", middleware.RequireAPISessionAuth, middleware.RequireTier(entitlements.TierBasic))
	sermons.Get("/", controllers.HandleAPISermonList)
	sermons.Post("/", controllers.HandleAPISermonCreate)
	sermons.Get("/:id", controllers.HandleAPISermonGet)
	sermons.Put("/:id", controllers.HandleAPISermonUpdate)
	sermons.Delete("/:id", controllers.HandleAPISermonDelete)

	// Theological assistant
	assistant := router.Group("/assistant")
	assistant.Get("/suggestions", controllers.HandleAPIAssistantSuggestions)
	assistant.Post("/ask", middleware.RequireAPISessionAuth, controllers.HandleAPIAssistantAsk)

	// Billing
	billing := router.Group("/billing")
	billing.Get("/plans", controllers.HandleAPIPlans)
	billing.Get("/subscription", middleware.RequireAPISessionAuth, controllers.HandleAPISubscription)
	billing.Post("/checkout", middleware.RequireAPISessionAuth, controllers.HandleAPICheckout)
	billing.Post("/subscription/cancel", middleware.RequireAPISessionAuth, controllers.HandleAPICancel)
	billing.Post("/webhook", controllers.HandlePaymentWebhook)
}
