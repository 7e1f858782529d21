package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/verbumapp/verbum/app/controllers"
	"github.com/verbumapp/verbum/internal/pkg/middleware"
	"github.com/verbumapp/verbum/internal/pkg/session"
	"github.com/verbumapp/verbum/internal/pkg/subscription"
)

type HttpRouter struct {
	store *subscription.Store
}

func NewHttpRouter(store *subscription.Store) *HttpRouter {
	return &HttpRouter{store: store}
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply the user context middleware globally as first middleware. It
	// reconciles the session user's entitlement on every request.
	app.Use(middleware.UserContext(h.store))

	h.registerPublicRoutes(app)
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Browser return from the checkout provider. The handler strips the
	// provider query parameters and surfaces the outcome as a flash message.
	app.Get("/planos", controllers.HandlePaymentCallback)

	// Billing provider webhooks (signature-verified in the controller)
	app.Post("/webhooks/mercadopago", controllers.HandlePaymentWebhook)
}
