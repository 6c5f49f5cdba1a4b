package preferences

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flaim-app/auth-broker/auth"
	"github.com/flaim-app/auth-broker/core"
)

// Handler wires the user-preferences HTTP surface to its store.
type Handler struct {
	Store *Store
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{Store: NewStore(db)}
}

// RegisterRoutes matches core.RouteRegistrar.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/user/preferences", auth.RequireAuth(true), h.handleGet)
	router.Post("/user/preferences/default-sport", auth.RequireAuth(true), h.handleSetDefaultSport)
}

func (h *Handler) handleGet(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	prefs, err := h.Store.Get(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to load preferences")
	}
	return c.JSON(prefs)
}

type defaultSportRequest struct {
	Sport *string `json:"sport"`
}

func (h *Handler) handleSetDefaultSport(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	var req defaultSportRequest
	if err := c.BodyParser(&req); err != nil {
		return core.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	sport := ""
	if req.Sport != nil {
		sport = *req.Sport
		if !core.ValidSport(sport) {
			return core.JSONError(c, fiber.StatusBadRequest, "Invalid sport")
		}
	}

	if err := h.Store.SetDefaultSport(c.Context(), userID, sport); err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to update preferences")
	}
	return c.JSON(fiber.Map{"success": true})
}
