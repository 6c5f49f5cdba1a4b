package espn

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flaim-app/auth-broker/auth"
	"github.com/flaim-app/auth-broker/core"
)

// Handler wires the ESPN credential/league HTTP surface to its store.
type Handler struct {
	store *Store
	// RateLimiter enforces §4.2.8's per-user daily raw-credentials limit. It
	// writes the X-RateLimit-* headers itself and returns false (having
	// already written the 429 response) when the caller is over limit. Left
	// nil, the raw-credentials path is unlimited — wiring it is the caller's
	// job since the limiter lives in oauthserver to share its rate_limits table.
	RateLimiter func(c *fiber.Ctx, userID string) bool
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes matches core.RouteRegistrar.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/credentials/espn", auth.RequireAuth(true), h.handleGet)
	router.Post("/credentials/espn", auth.RequireAuth(false), h.handleUpsert)
	router.Put("/credentials/espn", auth.RequireAuth(false), h.handleUpsert)
	router.Delete("/credentials/espn", auth.RequireAuth(false), h.handleDelete)
	router.Post("/credentials/espn/discover", auth.RequireAuth(false), h.handleDiscover)
}

type credentialsRequest struct {
	SWID  string `json:"swid"`
	S2    string `json:"s2"`
	Email string `json:"email"`
}

// handleGet dispatches on the ?raw= and ?forEdit= query flags, matching the
// three distinct read shapes spec §6 describes for this one route.
func (h *Handler) handleGet(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	if c.Query("raw") == "true" {
		return h.handleGetRaw(c, userID)
	}
	if c.Query("forEdit") == "true" {
		return h.handleGetForEdit(c, userID)
	}

	meta, err := h.store.GetMetadata(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	resp := fiber.Map{
		"hasCredentials": meta.HasCredentials,
		"hasLeagues":     meta.HasLeagues,
		"hasDefaultTeam": meta.HasDefaultTeam,
		"platform":       "espn",
	}
	if meta.HasCredentials {
		resp["email"] = meta.Email
		resp["lastUpdated"] = meta.LastUpdated.Format(time.RFC3339)
	}
	return c.JSON(resp)
}

// handleGetRaw is the only path that exposes plaintext swid/s2. It requires
// identity or eval API key (already enforced by RequireAuth(true) on the
// route) and is rate-limited per §4.2.8 via the caller-supplied limiter.
func (h *Handler) handleGetRaw(c *fiber.Ctx, userID string) error {
	if h.RateLimiter != nil && !h.RateLimiter(c, userID) {
		return nil
	}

	cred, err := h.store.GetCredentials(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if cred == nil || cred.SWID == "" || cred.S2 == "" {
		return core.JSONError(c, fiber.StatusNotFound, "No ESPN credentials found")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"platform": "espn",
		"credentials": fiber.Map{
			"swid": cred.SWID,
			"s2":   cred.S2,
		},
	})
}

func (h *Handler) handleGetForEdit(c *fiber.Ctx, userID string) error {
	cred, err := h.store.GetCredentials(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if cred == nil {
		return core.JSONError(c, fiber.StatusNotFound, "No ESPN credentials found")
	}
	return c.JSON(fiber.Map{"hasCredentials": true, "swid": cred.SWID, "s2": cred.S2})
}

func (h *Handler) handleUpsert(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return core.JSONError(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if !ValidSWID(req.SWID) {
		return core.JSONError(c, fiber.StatusBadRequest, "Invalid SWID format")
	}
	if !ValidS2(req.S2) {
		return core.JSONError(c, fiber.StatusBadRequest, "Invalid espn_s2 format")
	}

	if err := h.store.UpsertCredentials(c.Context(), userID, req.SWID, req.S2, req.Email); err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) handleDelete(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}
	if err := h.store.DeleteCredentials(c.Context(), userID); err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"success": true})
}

// handleDiscover triggers a Fan API enumeration plus historical traversal
// using the caller's stored credentials.
func (h *Handler) handleDiscover(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	cred, err := h.store.GetCredentials(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if cred == nil {
		return core.JSONError(c, fiber.StatusBadRequest, "No ESPN credentials found")
	}

	result, err := Discover(c.Context(), h.store, userID, cred.SWID, cred.S2)
	if err != nil {
		if err == ErrAuthenticationFailed {
			return core.JSONError(c, fiber.StatusUnauthorized, "ESPN authentication failed — credentials may be expired or invalid")
		}
		return core.JSONError(c, fiber.StatusInternalServerError, "Automatic league discovery failed")
	}

	return c.JSON(result)
}
