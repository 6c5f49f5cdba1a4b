package leagues

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flaim-app/auth-broker/auth"
	"github.com/flaim-app/auth-broker/core"
	"github.com/flaim-app/auth-broker/platform/espn"
	"github.com/flaim-app/auth-broker/platform/sleeper"
	"github.com/flaim-app/auth-broker/platform/yahoo"
	"github.com/flaim-app/auth-broker/preferences"
	"github.com/flaim-app/auth-broker/season"
)

// Handler aggregates the ESPN, Yahoo, and Sleeper league stores behind the
// cross-platform /leagues surface. Manual CRUD (bulk replace, add, team
// binding) targets ESPN leagues, the only platform with user-entered league
// rows; Sleeper leagues arrive exclusively through discovery and Yahoo
// leagues have their own /leagues/yahoo endpoints.
type Handler struct {
	espn        *espn.Store
	sleeper     *sleeper.Store
	yahoo       *yahoo.Store
	preferences *preferences.Store
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{
		espn:        espn.NewStore(db),
		sleeper:     sleeper.NewStore(db),
		yahoo:       yahoo.NewStore(db),
		preferences: preferences.NewStore(db),
	}
}

// RegisterRoutes matches core.RouteRegistrar.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/leagues", auth.RequireAuth(true), h.handleList)
	router.Post("/leagues", auth.RequireAuth(false), h.handleReplace)
	router.Put("/leagues", auth.RequireAuth(false), h.handleReplace)
	router.Delete("/leagues", auth.RequireAuth(false), h.handleRemove)
	router.Post("/leagues/add", auth.RequireAuth(false), h.handleAdd)
	router.Post("/leagues/default", auth.RequireAuth(false), h.handleSetDefault)
	router.Delete("/leagues/default/:sport", auth.RequireAuth(false), h.handleClearDefault)
	router.Patch("/leagues/:leagueId/team", auth.RequireAuth(false), h.handleSetTeam)
	router.Get("/leagues/yahoo", auth.RequireAuth(true), h.handleListYahoo)
	router.Delete("/leagues/yahoo/:id", auth.RequireAuth(false), h.handleRemoveYahoo)
}

func (h *Handler) handleList(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	espnLeagues, err := h.espn.ListLeagues(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to load leagues")
	}
	sleeperLeagues, err := h.sleeper.ListLeagues(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to load leagues")
	}

	views := make([]leagueView, 0, len(espnLeagues)+len(sleeperLeagues))
	for _, l := range espnLeagues {
		views = append(views, leagueView{
			Platform: "espn", Sport: l.Sport, LeagueID: l.LeagueID, LeagueName: l.LeagueName,
			SeasonYear: l.SeasonYear, TeamID: l.TeamID, TeamName: l.TeamName,
		})
	}
	for _, l := range sleeperLeagues {
		views = append(views, leagueView{
			Platform: "sleeper", Sport: l.Sport, LeagueID: l.LeagueID, LeagueName: l.LeagueName,
			SeasonYear: l.SeasonYear,
		})
	}

	return c.JSON(fiber.Map{"leagues": views, "totalLeagues": len(views)})
}

func (h *Handler) handleReplace(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	var inputs []bulkLeagueInput
	if err := c.BodyParser(&inputs); err != nil {
		return core.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if len(inputs) > core.MaxLeaguesPerUser {
		return core.JSONError(c, fiber.StatusBadRequest, "Too many leagues")
	}

	leagues := make([]espn.League, 0, len(inputs))
	for _, in := range inputs {
		leagues = append(leagues, espn.League{
			UserID: userID, Sport: in.Sport, LeagueID: in.LeagueID, SeasonYear: in.SeasonYear,
			TeamID: in.TeamID, TeamName: in.TeamName, LeagueName: in.LeagueName,
		})
	}

	if err := h.espn.ReplaceLeagues(c.Context(), userID, leagues); err != nil {
		if err == espn.ErrLeagueLimitExceeded {
			return core.JSONError(c, fiber.StatusBadRequest, "League limit exceeded")
		}
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to save leagues")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) handleRemove(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	leagueID := c.Query("leagueId")
	sport := c.Query("sport")
	if leagueID == "" || sport == "" {
		return core.JSONError(c, fiber.StatusBadRequest, "leagueId and sport are required")
	}

	removed, err := h.espn.RemoveLeague(c.Context(), userID, leagueID, sport)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to remove league")
	}
	return c.JSON(fiber.Map{"success": removed})
}

func (h *Handler) handleAdd(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	var in bulkLeagueInput
	if err := c.BodyParser(&in); err != nil {
		return core.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	exists, err := h.espn.LeagueExists(c.Context(), userID, in.Sport, in.LeagueID, in.SeasonYear)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "DB_ERROR")
	}
	if exists {
		return core.JSONError(c, fiber.StatusConflict, "DUPLICATE")
	}

	league := espn.League{
		UserID: userID, Sport: in.Sport, LeagueID: in.LeagueID, SeasonYear: in.SeasonYear,
		TeamID: in.TeamID, TeamName: in.TeamName, LeagueName: in.LeagueName,
	}
	if err := h.espn.SaveLeague(c.Context(), league); err != nil {
		if err == espn.ErrLeagueLimitExceeded {
			return core.JSONError(c, fiber.StatusBadRequest, "LIMIT_EXCEEDED")
		}
		return core.JSONError(c, fiber.StatusInternalServerError, "DB_ERROR")
	}
	return c.JSON(fiber.Map{"success": true})
}

type setDefaultRequest struct {
	Platform   string `json:"platform"`
	LeagueID   string `json:"leagueId"`
	Sport      string `json:"sport"`
	SeasonYear int    `json:"seasonYear"`
}

func (h *Handler) handleSetDefault(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	var req setDefaultRequest
	if err := c.BodyParser(&req); err != nil {
		return core.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	err := h.preferences.SetDefaultLeague(c.Context(), userID, req.Platform, req.Sport, req.LeagueID, req.SeasonYear)
	switch err {
	case nil:
		return c.JSON(fiber.Map{"success": true})
	case preferences.ErrLeagueNotFound:
		return core.JSONError(c, fiber.StatusNotFound, "League not found")
	case preferences.ErrLeagueNotBound:
		return core.JSONError(c, fiber.StatusBadRequest, "League has no team bound")
	default:
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to set default league")
	}
}

func (h *Handler) handleClearDefault(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	sport := c.Params("sport")
	if !core.ValidSport(sport) {
		return core.JSONError(c, fiber.StatusBadRequest, "Invalid sport")
	}

	if err := h.preferences.ClearDefaultLeague(c.Context(), userID, sport); err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to clear default league")
	}
	return c.JSON(fiber.Map{"success": true})
}

type setTeamRequest struct {
	TeamID     string `json:"teamId"`
	Sport      string `json:"sport"`
	TeamName   string `json:"teamName"`
	LeagueName string `json:"leagueName"`
	SeasonYear int    `json:"seasonYear"`
}

func (h *Handler) handleSetTeam(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	leagueID := c.Params("leagueId")
	var req setTeamRequest
	if err := c.BodyParser(&req); err != nil || req.TeamID == "" {
		return core.JSONError(c, fiber.StatusBadRequest, "teamId is required")
	}

	seasonYear := req.SeasonYear
	if seasonYear == 0 {
		seasonYear = season.GetDefaultSeasonYear(core.Sport(req.Sport), time.Now())
	}

	if err := h.espn.SetTeam(c.Context(), userID, req.Sport, leagueID, seasonYear, req.TeamID, req.TeamName, req.LeagueName); err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to bind team")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) handleListYahoo(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	leagues, err := h.yahoo.ListLeagues(c.Context(), userID)
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to load leagues")
	}

	views := make([]yahooLeagueView, 0, len(leagues))
	for _, l := range leagues {
		views = append(views, yahooLeagueView{
			LeagueKey: l.LeagueKey, LeagueName: l.LeagueName, Sport: l.Sport,
			SeasonYear: l.SeasonYear, TeamKey: l.TeamKey, TeamName: l.TeamName,
		})
	}
	return c.JSON(fiber.Map{"leagues": views, "totalLeagues": len(views)})
}

func (h *Handler) handleRemoveYahoo(c *fiber.Ctx) error {
	userID := auth.UserID(c)
	if userID == "" {
		return core.Unauthorized(c, "Authentication required")
	}

	removed, err := h.yahoo.RemoveLeague(c.Context(), userID, c.Params("id"))
	if err != nil {
		return core.JSONError(c, fiber.StatusInternalServerError, "Failed to remove league")
	}
	return c.JSON(fiber.Map{"success": removed})
}
