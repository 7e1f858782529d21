package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/verbumapp/verbum/internal/pkg/entitlements"
)

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID      uint                     `json:"user_id"`
	Username    string                   `json:"username"`
	IsLoggedIn  bool                     `json:"is_logged_in"`
	IsAdmin     bool                     `json:"is_admin"`
	Entitlement entitlements.Entitlement `json:"entitlement"`
	PersistWarn bool                     `json:"-"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals("USER_CONTEXT"); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false, Entitlement: entitlements.Free()}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// GetUsername returns the current user's username, or empty string if not logged in
func GetUsername(c *fiber.Ctx) string {
	return GetUserContext(c).Username
}

// GetEntitlement returns the current user's entitlement, free for anonymous
func GetEntitlement(c *fiber.Ctx) entitlements.Entitlement {
	return GetUserContext(c).Entitlement
}

// CanAccess reports whether the current request may read content gated at
// the given tier.
func CanAccess(c *fiber.Ctx, required entitlements.Tier) bool {
	ctx := GetUserContext(c)
	return entitlements.CanAccess(ctx.Entitlement, required, ctx.IsLoggedIn)
}
