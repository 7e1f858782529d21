package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/verbumapp/verbum/internal/pkg/subscription"
)

// Router installs a set of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter wires all routes. The HTTP router runs first so the session
// store and the global user context middleware exist before the API routes
// that depend on them.
func InstallRouter(app *fiber.App, store *subscription.Store) {
	setup(app, NewHttpRouter(store), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
