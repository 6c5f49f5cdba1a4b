package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flaim-app/auth-broker/core"
)

// RequireAuth builds Fiber middleware running Authenticate with the given
// allowEvalAPIKey flag, setting user_id/auth_type/scope in c.Locals on
// success. expectedResource (if non-empty) is read from
// X-Flaim-Expected-Resource, matching §4.2.7's introspection contract.
func RequireAuth(allowEvalAPIKey bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, authErr := Authenticate(bearerFromRequest(c), c.Get("X-Flaim-Expected-Resource"), allowEvalAPIKey)
		if authErr != nil {
			return core.Unauthorized(c, authErr.Error())
		}

		c.Locals("user_id", result.UserID)
		c.Locals("auth_type", string(result.AuthType))
		c.Locals("scope", result.Scope)
		return c.Next()
	}
}

// UserID reads the authenticated principal set by RequireAuth.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// Scope reads the authenticated principal's scope, if any.
func Scope(c *fiber.Ctx) string {
	s, _ := c.Locals("scope").(string)
	return s
}

// Result runs Authenticate inline without advancing the handler chain —
// mirrors the teacher's ValidateAuth-vs-LogtoAuth split for call sites (like
// introspection) that need the full AuthResult rather than a pass/fail gate.
func Result(c *fiber.Ctx, expectedResource string, allowEvalAPIKey bool) (*AuthResult, *AuthError) {
	return Authenticate(bearerFromRequest(c), expectedResource, allowEvalAPIKey)
}
