//go:build integration

package espn

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/flaim-app/auth-broker/core"
	"github.com/flaim-app/auth-broker/migrations"
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

// TestSaveLeague_ConcurrentInsertsRespectCap reproduces the race Discover's
// sibling-league goroutines can hit: many callers racing SaveLeague for the
// same user, each having passed an application-side count check before any
// of them commits. The 0003 migration's trigger is what's supposed to keep
// the final count at core.MaxLeaguesPerUser regardless of how many raced.
func TestSaveLeague_ConcurrentInsertsRespectCap(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)
	userID := uuid.New().String()
	ctx := context.Background()

	const attempts = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	var limitErrors int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			league := League{
				UserID:     userID,
				Sport:      "football",
				LeagueID:   uuid.New().String(),
				SeasonYear: 2025,
				TeamID:     "t",
			}
			err := store.SaveLeague(ctx, league)
			if err == ErrLeagueLimitExceeded {
				mu.Lock()
				limitErrors++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	count, err := store.LeagueCount(ctx, userID)
	require.NoError(t, err)
	require.LessOrEqual(t, count, core.MaxLeaguesPerUser)
	require.Greater(t, limitErrors, 0, "expected at least one concurrent caller to be rejected by the cap")
}

// TestSaveLeague_SingleCallerFastPathStillWorks confirms the ordinary,
// non-racing path (the vast majority of calls) still returns the friendly
// ErrLeagueLimitExceeded from the application-side count check rather than
// falling through to the trigger's raw Postgres error.
func TestSaveLeague_SingleCallerFastPathStillWorks(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)
	userID := uuid.New().String()
	ctx := context.Background()

	for i := 0; i < core.MaxLeaguesPerUser; i++ {
		require.NoError(t, store.SaveLeague(ctx, League{
			UserID: userID, Sport: "football", LeagueID: uuid.New().String(), SeasonYear: 2025,
		}))
	}

	err := store.SaveLeague(ctx, League{UserID: userID, Sport: "football", LeagueID: uuid.New().String(), SeasonYear: 2025})
	require.ErrorIs(t, err, ErrLeagueLimitExceeded)
}
