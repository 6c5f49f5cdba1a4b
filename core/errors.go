package core

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// OAuth-spec error codes (RFC 6749 §4.1.2.1 / §5.2).
const (
	ErrInvalidRequest          = "invalid_request"
	ErrInvalidGrant            = "invalid_grant"
	ErrUnsupportedResponseType = "unsupported_response_type"
	ErrUnsupportedGrantType    = "unsupported_grant_type"
)

// JSONError writes a plain {status, error} JSON response.
func JSONError(c *fiber.Ctx, status int, errMsg string) error {
	return c.Status(status).JSON(ErrorResponse{Status: "error", Error: errMsg})
}

// Unauthorized writes a 401 {status:"unauthorized", error: msg} response.
func Unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Status: "unauthorized", Error: msg})
}

// OAuthJSONError writes the RFC 6749 JSON error shape: {error, error_description}.
func OAuthJSONError(c *fiber.Ctx, status int, code, description string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":             code,
		"error_description": description,
	})
}

// OAuthRedirectError redirects to redirectURI with error/error_description/state
// query parameters appended, per RFC 6749 §4.1.2.1. Used by /authorize once the
// redirect_uri itself has been validated as known-good.
func OAuthRedirectError(c *fiber.Ctx, redirectURI, code, description, state string) error {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return OAuthJSONError(c, fiber.StatusBadRequest, code, description)
	}
	q := u.Query()
	q.Set("error", code)
	if description != "" {
		q.Set("error_description", description)
	}
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return c.Redirect(u.String(), fiber.StatusFound)
}
