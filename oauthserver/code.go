package oauthserver

import (
	"log"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flaim-app/auth-broker/auth"
	"github.com/flaim-app/auth-broker/core"
)

type mintCodeRequest struct {
	RedirectURI         string `json:"redirect_uri"`
	Scope               string `json:"scope"`
	State               string `json:"state"`
	CodeChallenge       string `json:"code_challenge"`
	CodeChallengeMethod string `json:"code_challenge_method"`
	Resource            string `json:"resource"`
}

// handleMintCode implements §4.2.4. If the caller echoes back the state
// token handed out by /authorize, that consent-flow record is consumed
// (single-use, deleted either way) and its redirect_uri/code_challenge must
// agree with the body — guarding against a consent page that was tampered
// with in transit. Callers that mint codes directly (no prior /authorize
// round-trip) simply omit state.
func (h *Handler) handleMintCode(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "unauthorized")
	}

	var req mintCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidRequest, "invalid JSON body")
	}

	if req.State != "" {
		st, err := h.store.ConsumeOAuthState(c.Context(), req.State)
		if err != nil {
			log.Printf("[OAuth] state lookup failed: %v", err)
			return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
		}
		if st == nil {
			return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidGrant, "state is invalid or expired")
		}
		if st.RedirectURI != req.RedirectURI || st.CodeChallenge != req.CodeChallenge {
			return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidRequest, "request does not match the authorized consent")
		}
		if req.Resource == "" {
			req.Resource = st.Resource
		}
		if req.Scope == "" {
			req.Scope = st.Scope
		}
	}

	if req.RedirectURI == "" || req.CodeChallenge == "" {
		return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidRequest, "redirect_uri and code_challenge are required")
	}

	method := req.CodeChallengeMethod
	if method == "" {
		method = "S256"
	}

	code, err := randomURLSafeToken(core.OAuthCodeBytes)
	if err != nil {
		log.Printf("[OAuth] code generation failed: %v", err)
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	err = h.store.CreateAuthCode(c.Context(), &AuthCode{
		Code:                code,
		UserID:              userID,
		RedirectURI:         req.RedirectURI,
		Scope:               req.Scope,
		Resource:            req.Resource,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: method,
		ExpiresAt:           time.Now().Add(core.OAuthCodeTTL),
	})
	if err != nil {
		log.Printf("[OAuth] code persist failed: %v", err)
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	redirectURL, err := url.Parse(req.RedirectURI)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	q := redirectURL.Query()
	q.Set("code", code)
	if req.State != "" {
		q.Set("state", req.State)
	}
	redirectURL.RawQuery = q.Encode()

	return c.JSON(fiber.Map{
		"success":      true,
		"code":         code,
		"redirect_url": redirectURL.String(),
	})
}
