package oauthserver

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	authpkg "github.com/flaim-app/auth-broker/auth"
	"github.com/flaim-app/auth-broker/core"
)

// Handler wires the OAuth authorization server's HTTP surface to its store.
type Handler struct {
	store *Store
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{store: NewStore(db)}
}

// authenticate is a thin wrapper around auth.Result, used by
// handleIntrospect to get the full AuthResult for the request.
func (h *Handler) authenticate(c *fiber.Ctx, expectedResource string, allowEvalAPIKey bool) (*authpkg.AuthResult, *authpkg.AuthError) {
	return authpkg.Result(c, expectedResource, allowEvalAPIKey)
}

// ValidateOAuthToken adapts the store lookup to auth.OAuthValidator's shape,
// enforcing §4.6 resource binding: a token minted with a resource only
// validates against a matching (or absent) expectedResource.
func (h *Handler) ValidateOAuthToken(token, expectedResource string) (string, string, error) {
	record, err := h.store.LookupAccessToken(context.Background(), token)
	if err != nil {
		return "", "", err
	}
	if record == nil {
		return "", "", nil
	}
	if record.Resource != "" && expectedResource != "" && record.Resource != expectedResource {
		return "", "", nil
	}
	return record.UserID, record.Scope, nil
}

// RegisterRoutes mounts every OAuth endpoint. Matches core.RouteRegistrar.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/.well-known/oauth-authorization-server", handleAuthServerMetadata)
	router.Get("/.well-known/oauth-authorization-server/*", handleAuthServerMetadata)
	router.Get("/.well-known/oauth-protected-resource", handleProtectedResourceMetadata)
	router.Get("/.well-known/oauth-protected-resource/*", handleProtectedResourceMetadata)

	router.Post("/register", h.handleRegister)
	router.Get("/authorize", h.handleAuthorize)
	router.Post("/oauth/code", authpkg.RequireAuth(false), h.handleMintCode)
	router.Post("/token", h.handleToken)
	router.Post("/revoke", h.handleRevoke)
	router.Get("/introspect", h.handleIntrospect)

	router.Get("/oauth/status", authpkg.RequireAuth(false), h.handleStatus)
	router.Post("/oauth/revoke-all", authpkg.RequireAuth(false), h.handleRevokeAll)
	router.Post("/oauth/revoke", authpkg.RequireAuth(false), h.handleRevokeOwn)
}

type oauthStatusResponse struct {
	ActiveTokens int `json:"activeTokens"`
}

func (h *Handler) handleStatus(c *fiber.Ctx) error {
	userID := authpkg.UserID(c)
	count, err := h.store.ActiveTokenCountForUser(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(oauthStatusResponse{ActiveTokens: count})
}

func (h *Handler) handleRevokeAll(c *fiber.Ctx) error {
	userID := authpkg.UserID(c)
	revoked, err := h.store.RevokeAllForUser(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"success": true, "revoked": revoked})
}

type revokeOwnRequest struct {
	Token string `json:"token"`
}

func (h *Handler) handleRevokeOwn(c *fiber.Ctx) error {
	var req revokeOwnRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return core.OAuthJSONError(c, fiber.StatusBadRequest, core.ErrInvalidRequest, "token is required")
	}
	if err := h.store.RevokeAccessToken(c.Context(), req.Token); err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"success": true})
}
