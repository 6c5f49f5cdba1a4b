package oauthserver

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/flaim-app/auth-broker/core"
)

type registerRequest struct {
	RedirectURIs []string `json:"redirect_uris"`
	ClientName   string   `json:"client_name"`
}

// handleRegister implements §4.2.2 Dynamic Client Registration: public
// clients only, no secret issued.
func (h *Handler) handleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return core.JSONError(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if len(req.RedirectURIs) == 0 {
		return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidRequest, "redirect_uris is required")
	}

	suffix, err := randomURLSafeToken(32)
	if err != nil {
		log.Printf("[OAuth] client_id generation failed: %v", err)
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	clientID := core.OAuthClientIDPrefix + suffix

	clientName := req.ClientName
	if clientName == "" {
		clientName = deriveClientName(req.RedirectURIs[0])
	}

	client, err := h.store.RegisterClient(c.Context(), clientID, req.RedirectURIs, clientName)
	if err != nil {
		log.Printf("[OAuth] client registration failed: %v", err)
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"client_id":                client.ClientID,
		"redirect_uris":            client.RedirectURIs,
		"client_name":              client.ClientName,
		"client_id_issued_at":      client.RegisteredAt.Unix(),
		"token_endpoint_auth_method": "none",
	})
}
