package oauthserver

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// handleRevoke implements RFC 7009: always 200, even for an unknown token —
// revocation is visibly successful regardless of whether anything was
// actually revoked.
func (h *Handler) handleRevoke(c *fiber.Ctx) error {
	token := formOrJSON(c, "token")
	if token != "" {
		if err := h.store.RevokeAccessToken(c.Context(), token); err != nil {
			log.Printf("[OAuth] revoke failed (swallowed per RFC 7009): %v", err)
		}
	}
	return c.SendStatus(fiber.StatusOK)
}

// handleIntrospect is the service-internal endpoint the downstream MCP
// gateway calls to validate a bearer credential. It runs the full
// multi-mode authenticator with allowEvalApiKey=true.
func (h *Handler) handleIntrospect(c *fiber.Ctx) error {
	result, authErr := h.authenticate(c, c.Get("X-Flaim-Expected-Resource"), true)
	if authErr != nil {
		c.Status(fiber.StatusUnauthorized)
		return c.JSON(IntrospectResponse{Valid: false, Error: authErr.Error()})
	}
	return c.JSON(IntrospectResponse{Valid: true, UserID: result.UserID, Scope: result.Scope})
}
