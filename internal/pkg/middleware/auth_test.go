package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/usercontext"
)

func newTierTestApp(userCtx *usercontext.UserContext, required entitlements.Tier) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userCtx != nil {
			c.Locals("USER_CONTEXT", *userCtx)
			c.Locals(usercontext.KeyFromProtected, userCtx.IsLoggedIn)
		}
		return c.Next()
	})
	app.Get("/gated", RequireTier(required), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestRequireTierAnonymousGets401(t *testing.T) {
	app := newTierTestApp(nil, entitlements.TierBasic)

	resp, err := app.Test(httptest.NewRequest("GET", "/gated", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireTierFreeUserGets403(t *testing.T) {
	app := newTierTestApp(&usercontext.UserContext{
		UserID:      1,
		IsLoggedIn:  true,
		Entitlement: entitlements.Free(),
	}, entitlements.TierBasic)

	resp, err := app.Test(httptest.NewRequest("GET", "/gated", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireTierSubscriberPasses(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour)
	app := newTierTestApp(&usercontext.UserContext{
		UserID:     1,
		IsLoggedIn: true,
		Entitlement: entitlements.Entitlement{
			Tier:      entitlements.TierPremium,
			Active:    true,
			ExpiresAt: &expires,
		},
	}, entitlements.TierBasic)

	resp, err := app.Test(httptest.NewRequest("GET", "/gated", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAPISessionAuth(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-Test-Logged-In") == "yes" {
			c.Locals(usercontext.KeyFromProtected, true)
		}
		return c.Next()
	})
	app.Get("/me", RequireAPISessionAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("X-Test-Logged-In", "yes")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
