//go:build integration

package leagues

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/flaim-app/auth-broker/migrations"
	"github.com/flaim-app/auth-broker/platform/espn"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	require.NoError(t, migrations.Run(dbURL))

	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// withUser stubs auth.RequireAuth for tests that don't want to mint a real
// bearer token — it sets the same c.Locals key RequireAuth does.
func withUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func newTestApp(h *Handler, userID string) *fiber.App {
	app := fiber.New()
	app.Post("/leagues/add", withUser(userID), h.handleAdd)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHandleAdd_DuplicateIsConflict(t *testing.T) {
	pool := testPool(t)
	h := NewHandler(pool)
	userID := uuid.New().String()
	app := newTestApp(h, userID)

	in := bulkLeagueInput{Sport: "football", LeagueID: "555", SeasonYear: 2025}

	resp := doJSON(t, app, http.MethodPost, "/leagues/add", in)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/leagues/add", in)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleAdd_LimitExceeded(t *testing.T) {
	pool := testPool(t)
	h := NewHandler(pool)
	userID := uuid.New().String()
	app := newTestApp(h, userID)
	espnStore := espn.NewStore(pool)

	for i := 0; i < 10; i++ {
		require.NoError(t, espnStore.SaveLeague(context.Background(), espn.League{
			UserID: userID, Sport: "football", LeagueID: uuid.New().String(), SeasonYear: 2025,
		}))
	}

	in := bulkLeagueInput{Sport: "football", LeagueID: "one-too-many", SeasonYear: 2025}
	resp := doJSON(t, app, http.MethodPost, "/leagues/add", in)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
