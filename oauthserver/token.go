package oauthserver

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flaim-app/auth-broker/core"
)

// handleToken implements §4.2.5. Accepts form-encoded or JSON bodies —
// Fiber's BodyParser already dispatches on Content-Type, matching the
// teacher's own BodyParser usage elsewhere (core/preferences.go).
func (h *Handler) handleToken(c *fiber.Ctx) error {
	c.Set("Cache-Control", "no-store")
	c.Set("Pragma", "no-cache")

	grantType := formOrJSON(c, "grant_type")

	switch grantType {
	case "authorization_code":
		return h.exchangeAuthorizationCode(c)
	case "refresh_token":
		return h.exchangeRefreshToken(c)
	default:
		return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrUnsupportedGrantType, "grant_type must be authorization_code or refresh_token")
	}
}

func (h *Handler) exchangeAuthorizationCode(c *fiber.Ctx) error {
	code := formOrJSON(c, "code")
	redirectURI := formOrJSON(c, "redirect_uri")
	verifier := formOrJSON(c, "code_verifier")

	if code == "" || redirectURI == "" {
		return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidRequest, "code and redirect_uri are required")
	}

	ac, err := h.store.ConsumeAuthCode(c.Context(), code)
	if err != nil {
		log.Printf("[OAuth] code consumption failed: %v", err)
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if ac == nil {
		return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidGrant, "code is invalid, expired, or already used")
	}

	if ac.RedirectURI != redirectURI {
		return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidGrant, "redirect_uri does not match the authorization request")
	}

	if ac.CodeChallenge != "" {
		if verifier == "" {
			return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidRequest, "code_verifier is required")
		}
		if !verifyPKCE(verifier, ac.CodeChallenge, ac.CodeChallengeMethod) {
			return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidGrant, "code_verifier does not match code_challenge")
		}
	}

	resp, err := h.mintAndPersist(c, ac.UserID, ac.Scope, ac.Resource, deriveClientName(ac.RedirectURI))
	if err != nil {
		log.Printf("[OAuth] token mint failed: %v", err)
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(resp)
}

func (h *Handler) exchangeRefreshToken(c *fiber.Ctx) error {
	refreshToken := formOrJSON(c, "refresh_token")
	if refreshToken == "" {
		return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidRequest, "refresh_token is required")
	}

	existing, err := h.store.LookupByRefreshToken(c.Context(), refreshToken)
	if err != nil {
		log.Printf("[OAuth] refresh lookup failed: %v", err)
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if existing == nil {
		return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidGrant, "refresh_token is invalid, revoked, or expired")
	}

	if err := h.store.RevokeAccessToken(c.Context(), existing.AccessToken); err != nil {
		log.Printf("[OAuth] old token revoke failed during refresh: %v", err)
	}

	resp, err := h.mintAndPersist(c, existing.UserID, existing.Scope, existing.Resource, existing.ClientName)
	if err != nil {
		log.Printf("[OAuth] token mint failed during refresh: %v", err)
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(resp)
}

func (h *Handler) mintAndPersist(c *fiber.Ctx, userID, scope, resource, clientName string) (*TokenResponse, error) {
	accessToken, err := randomURLSafeToken(core.OAuthTokenBytes)
	if err != nil {
		return nil, err
	}
	refreshToken, err := randomURLSafeToken(core.OAuthTokenBytes)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &AccessToken{
		AccessToken:        accessToken,
		UserID:             userID,
		Scope:              scope,
		Resource:           resource,
		ClientName:         clientName,
		ExpiresAt:          now.Add(core.OAuthAccessTokenTTL),
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: now.Add(core.OAuthRefreshTokenTTL),
	}

	if err := h.store.MintTokenPair(c.Context(), record); err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(core.OAuthAccessTokenTTL.Seconds()),
		Scope:        scope,
		RefreshToken: refreshToken,
	}, nil
}

// formOrJSON reads a field from either a form-encoded or JSON request body,
// preferring the form value (Fiber populates FormValue from both urlencoded
// and multipart bodies) and falling back to a parsed JSON map.
func formOrJSON(c *fiber.Ctx, key string) string {
	if v := c.FormValue(key); v != "" {
		return v
	}
	var body map[string]interface{}
	if err := c.BodyParser(&body); err == nil {
		if v, ok := body[key].(string); ok {
			return v
		}
	}
	return ""
}
