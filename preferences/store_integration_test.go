//go:build integration

package preferences

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/flaim-app/auth-broker/migrations"
	"github.com/flaim-app/auth-broker/platform/espn"
	"github.com/flaim-app/auth-broker/platform/sleeper"
)

// testPool opens a pool against TEST_DATABASE_URL, migrated to the current
// schema. Skips the test entirely when the env var is unset, matching the
// rest of this service's integration tests — these hit a real Postgres and
// are not part of the default unit-test run.
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

// TestSetDefaultLeague_ESPN_RequiresTeamBoundOnThatLeague guards against the
// bug where a user with one bound ESPN league could set an entirely
// different, unbound league as their default — SetDefaultLeague must check
// team-binding on the specific (sport, leagueId, seasonYear) being set, not
// whether *any* of the user's ESPN leagues has a team bound.
func TestSetDefaultLeague_ESPN_RequiresTeamBoundOnThatLeague(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	userID := uuid.New().String()

	espnStore := espn.NewStore(pool)
	prefsStore := NewStore(pool)

	boundLeague := espn.League{UserID: userID, Sport: "football", LeagueID: "111", SeasonYear: 2025, TeamID: "t1"}
	unboundLeague := espn.League{UserID: userID, Sport: "football", LeagueID: "222", SeasonYear: 2025}
	require.NoError(t, espnStore.SaveLeague(ctx, boundLeague))
	require.NoError(t, espnStore.SaveLeague(ctx, unboundLeague))

	err := prefsStore.SetDefaultLeague(ctx, userID, "espn", "football", "111", 2025)
	require.NoError(t, err)

	err = prefsStore.SetDefaultLeague(ctx, userID, "espn", "football", "222", 2025)
	require.ErrorIs(t, err, ErrLeagueNotBound)
}

func TestSetDefaultLeague_ESPN_MissingLeagueIs404(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	userID := uuid.New().String()

	prefsStore := NewStore(pool)
	err := prefsStore.SetDefaultLeague(ctx, userID, "espn", "football", "does-not-exist", 2025)
	require.ErrorIs(t, err, ErrLeagueNotFound)
}

// TestSetDefaultLeague_Sleeper_ValidatesExistence guards against the bug
// where the platform switch had no branch for sleeper/yahoo, so a bogus
// leagueId for those platforms always succeeded.
func TestSetDefaultLeague_Sleeper_ValidatesExistence(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	userID := uuid.New().String()

	sleeperStore := sleeper.NewStore(pool)
	prefsStore := NewStore(pool)

	err := prefsStore.SetDefaultLeague(ctx, userID, "sleeper", "football", "bogus", 2025)
	require.ErrorIs(t, err, ErrLeagueNotFound)

	require.NoError(t, sleeperStore.SaveLeague(ctx, sleeper.League{
		UserID: userID, LeagueID: "real-league", SeasonYear: 2025, Sport: "football",
	}))
	err = prefsStore.SetDefaultLeague(ctx, userID, "sleeper", "football", "real-league", 2025)
	require.NoError(t, err)
}

func TestSetDefaultLeague_UnknownPlatformIs404(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	userID := uuid.New().String()

	prefsStore := NewStore(pool)
	err := prefsStore.SetDefaultLeague(ctx, userID, "madeup-platform", "football", "1", 2025)
	require.ErrorIs(t, err, ErrLeagueNotFound)
}
