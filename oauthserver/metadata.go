package oauthserver

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flaim-app/auth-broker/core"
)

// handleAuthServerMetadata serves §6's RFC 8414 authorization server
// metadata. The resource-specific suffix (/.well-known/oauth-authorization-server/*)
// serves the identical body per spec §9's open-question resolution
// ("preserve the simpler 'same body' behavior").
func handleAuthServerMetadata(c *fiber.Ctx) error {
	c.Set("Cache-Control", "public, max-age=3600")
	return c.JSON(fiber.Map{
		"issuer":                                 core.BaseURL(),
		"authorization_endpoint":                 core.BaseURL() + "/authorize",
		"token_endpoint":                         core.BaseURL() + "/token",
		"registration_endpoint":                  core.BaseURL() + "/register",
		"revocation_endpoint":                    core.BaseURL() + "/revoke",
		"introspection_endpoint":                 core.BaseURL() + "/introspect",
		"grant_types_supported":                  []string{"authorization_code", "refresh_token"},
		"response_types_supported":               []string{"code"},
		"code_challenge_methods_supported":       []string{"S256"},
		"token_endpoint_auth_methods_supported":  []string{"none", "client_secret_post"},
		"scopes_supported":                       []string{core.ScopeRead, core.ScopeWrite},
	})
}

// handleProtectedResourceMetadata serves §6's RFC 9728 protected-resource
// metadata. suffix defaults to "/mcp" when the wildcard route carries none.
func handleProtectedResourceMetadata(c *fiber.Ctx) error {
	suffix := c.Params("*")
	if suffix == "" {
		suffix = "/mcp"
	} else if suffix[0] != '/' {
		suffix = "/" + suffix
	}

	c.Set("Cache-Control", "public, max-age=3600")
	return c.JSON(fiber.Map{
		"resource":                 core.BaseURL() + suffix,
		"authorization_servers":    []string{core.BaseURL()},
		"bearer_methods_supported": []string{"header"},
		"scopes_supported":         []string{core.ScopeRead, core.ScopeWrite},
	})
}
