package sleeper

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flaim-app/auth-broker/auth"
	"github.com/flaim-app/auth-broker/core"
)

// Handler wires the Sleeper connector's HTTP surface to its store.
type Handler struct {
	store *Store
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{store: NewStore(db)}
}

// RegisterRoutes matches core.RouteRegistrar.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Post("/connect/sleeper/discover", auth.RequireAuth(false), h.handleDiscover)
}

type discoverRequest struct {
	Username string `json:"username"`
}

func (h *Handler) handleDiscover(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	var req discoverRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" {
		return core.JSONError(c, fiber.StatusBadRequest, "username is required")
	}

	result, err := Discover(c.Context(), h.store, userID, req.Username)
	if err != nil {
		if err == ErrUserNotFound {
			return core.JSONError(c, fiber.StatusNotFound, "No Sleeper account found for that username")
		}
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to reach Sleeper: "+err.Error())
	}

	resp := fiber.Map{
		"success":            result.Success,
		"username":           req.Username,
		"leagues_found":      result.LeaguesFound,
		"seasons_discovered": result.SeasonsDiscovered,
	}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	return c.JSON(resp)
}
