package oauthserver

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flaim-app/auth-broker/core"
)

// handleAuthorize implements §4.2.3. Success redirects to the consent UI
// carrying an opaque state token; failures either 400 JSON (redirect_uri
// itself unknown/missing) or 302-with-error (redirect_uri is known-good, so
// the error can be safely delivered to the client via redirect).
func (h *Handler) handleAuthorize(c *fiber.Ctx) error {
	redirectURI := c.Query("redirect_uri")
	if redirectURI == "" {
		return core.JSONError(c, fiber.StatusBadRequest, "redirect_uri is required")
	}
	if !isValidRedirectURI(redirectURI) {
		return core.JSONError(c, fiber.StatusBadRequest, "redirect_uri is not recognized")
	}

	clientID := c.Query("client_id")
	state := c.Query("state")
	scope := c.Query("scope")
	resource := c.Query("resource")

	responseType := c.Query("response_type")
	if responseType != "code" {
		return core.OAuthRedirectError(c, redirectURI, "unsupported_response_type", "only response_type=code is supported", state)
	}

	codeChallenge := c.Query("code_challenge")
	if codeChallenge == "" {
		return core.OAuthRedirectError(c, redirectURI, core.ErrInvalidRequest, "code_challenge is required (PKCE)", state)
	}

	codeChallengeMethod := c.Query("code_challenge_method")
	if codeChallengeMethod != "S256" {
		return core.OAuthRedirectError(c, redirectURI, core.ErrInvalidRequest, "code_challenge_method must be S256", state)
	}

	stateToken, err := randomURLSafeToken(core.OAuthStateBytes)
	if err != nil {
		log.Printf("[OAuth] authorize state generation failed: %v", err)
		return core.OAuthRedirectError(c, redirectURI, "server_error", "internal error", state)
	}

	err = h.store.CreateOAuthState(c.Context(), &OAuthState{
		State:               stateToken,
		ClientID:            clientID,
		RedirectURI:         redirectURI,
		Scope:               scope,
		Resource:            resource,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
		ExpiresAt:           time.Now().Add(core.OAuthStateTTL),
	})
	if err != nil {
		log.Printf("[OAuth] authorize state persist failed: %v", err)
		return core.OAuthRedirectError(c, redirectURI, "server_error", "internal error", state)
	}

	consentURL := core.FrontendURL() + "/oauth/consent?state=" + stateToken
	if state != "" {
		consentURL += "&client_state=" + state
	}
	return c.Redirect(consentURL, fiber.StatusFound)
}
