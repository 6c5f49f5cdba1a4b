package yahoo

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"

	"github.com/flaim-app/auth-broker/auth"
	"github.com/flaim-app/auth-broker/core"
)

// Handler wires the Yahoo connector's HTTP surface to its store and OAuth config.
type Handler struct {
	store  *Store
	states *stateStore
	cfg    *oauth2.Config
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{
		store:  NewStore(db),
		states: &stateStore{db: db},
		cfg:    NewConfig(),
	}
}

// RegisterRoutes matches core.RouteRegistrar.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/connect/yahoo/authorize", auth.RequireAuth(false), h.handleAuthorize)
	router.Get("/connect/yahoo/callback", h.handleCallback)
	router.Get("/connect/yahoo/credentials", auth.RequireAuth(true), h.handleCredentials)
	router.Get("/connect/yahoo/status", auth.RequireAuth(true), h.handleStatus)
	router.Delete("/connect/yahoo/disconnect", auth.RequireAuth(false), h.handleDisconnect)
	router.Post("/connect/yahoo/discover", auth.RequireAuth(false), h.handleDiscover)
}

func (h *Handler) handleAuthorize(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	state := newState(userID)
	if err := h.states.saveState(c.Context(), state, userID); err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.Redirect(h.cfg.AuthCodeURL(state), fiber.StatusFound)
}

func (h *Handler) handleCallback(c *fiber.Ctx) error {
	code, state := c.Query("code"), c.Query("state")
	frontend := core.FrontendURL()

	if code == "" || state == "" {
		return c.Redirect(frontend+"/leagues?error=invalid_callback", fiber.StatusFound)
	}

	userID, err := h.states.consumeState(c.Context(), state)
	if err != nil || userID == "" {
		return c.Redirect(frontend+"/leagues?error=invalid_state", fiber.StatusFound)
	}

	token, err := Exchange(c.Context(), h.cfg, code)
	if err != nil {
		return c.Redirect(frontend+"/leagues?error=token_exchange_failed", fiber.StatusFound)
	}

	if err := h.store.UpsertCredentials(c.Context(), userID, token.AccessToken, token.RefreshToken, token.Expiry, ""); err != nil {
		return c.Redirect(frontend+"/leagues?error=storage_failed", fiber.StatusFound)
	}

	return c.Redirect(frontend+"/leagues?yahoo=connected", fiber.StatusFound)
}

func (h *Handler) handleCredentials(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	cred, err := EnsureFresh(c.Context(), h.store, h.cfg, userID)
	if err != nil {
		if err == ErrRefreshFailed {
			return core.JSONError(c, fiber.StatusUnauthorized, "refresh_failed")
		}
		return core.JSONError(c, fiber.StatusNotFound, "not_connected")
	}

	expiresIn := int(cred.ExpiresAt.Unix() - time.Now().Unix())
	return c.JSON(fiber.Map{"access_token": cred.AccessToken, "expires_in": expiresIn})
}

func (h *Handler) handleStatus(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}
	cred, err := h.store.GetCredentials(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"connected": cred != nil})
}

func (h *Handler) handleDisconnect(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}
	if err := h.store.DeleteCredentials(c.Context(), userID); err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) handleDiscover(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	cred, err := EnsureFresh(c.Context(), h.store, h.cfg, userID)
	if err != nil {
		if err == ErrRefreshFailed {
			return core.JSONError(c, fiber.StatusUnauthorized, "refresh_failed")
		}
		return core.JSONError(c, fiber.StatusBadRequest, "not_connected")
	}

	leagues, err := DiscoverLeagues(h.store, c.Context(), userID, cred.AccessToken)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, fmt.Sprintf("discovery failed: %v", err))
	}
	return c.JSON(fiber.Map{"success": true, "leagues_found": len(leagues), "leagues": leagues})
}
