package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/session"
	"github.com/verbumapp/verbum/internal/pkg/subscription"
	"github.com/verbumapp/verbum/internal/pkg/usercontext"
)

// UserContext sets up the complete user context for every request, including
// the reconciled entitlement. This centralizes session handling so
// controllers never read the session store directly.
func UserContext(store *subscription.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		anonymous := usercontext.UserContext{
			IsLoggedIn:  false,
			IsAdmin:     false,
			Entitlement: entitlements.Free(),
		}

		sess, err := session.GetSessionStore().Get(c)
		if err != nil {
			c.Locals("USER_CONTEXT", anonymous)
			c.Locals(usercontext.KeyFromProtected, false)
			c.Locals(usercontext.KeyIsAdmin, false)
			return c.Next()
		}

		userID := sess.Get(usercontext.KeyUserID)
		if userID == nil {
			c.Locals("USER_CONTEXT", anonymous)
			c.Locals(usercontext.KeyFromProtected, false)
			c.Locals(usercontext.KeyIsAdmin, false)
			return c.Next()
		}

		username := session.GetSessionValue(c, usercontext.KeyUsername)
		isAdmin := sess.Get(usercontext.KeyIsAdmin)

		// Reconcile expires stale entitlements lazily; a persistence outage
		// degrades to the session copy instead of failing the request.
		ent, entErr := store.Reconcile(c.UserContext(), userID.(uint))
		persistWarn := false
		if entErr != nil {
			if errors.Is(entErr, subscription.ErrPersistUnavailable) {
				persistWarn = true
			} else {
				log.Warn().Err(entErr).Uint("user_id", userID.(uint)).Msg("entitlement reconcile failed")
				ent = entitlements.Free()
			}
		}

		userCtx := usercontext.UserContext{
			UserID:      userID.(uint),
			Username:    username,
			IsLoggedIn:  true,
			IsAdmin:     isAdmin != nil && isAdmin.(bool),
			Entitlement: ent,
			PersistWarn: persistWarn,
		}
		c.Locals("USER_CONTEXT", userCtx)

		c.Locals(usercontext.KeyFromProtected, true)
		c.Locals(usercontext.KeyUserID, userID.(uint))
		c.Locals(usercontext.KeyUsername, username)
		c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

		return c.Next()
	}
}
