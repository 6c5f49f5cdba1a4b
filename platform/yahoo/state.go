package yahoo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/google/uuid"
)

// stateStore persists outbound OAuth CSRF state, distinct from the inbound
// (MCP) oauth_states table in oauthserver.
type stateStore struct {
	db *pgxpool.Pool
}

// newState builds the "<userId>:<uuid>" CSRF token spec §4.3.2 mandates.
func newState(userID string) string {
	return userID + ":" + uuid.NewString()
}

// saveState persists the state with a 10-minute TTL.
func (s *stateStore) saveState(ctx context.Context, state, userID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO platform_oauth_states (state, user_id, platform, expires_at)
		VALUES ($1, $2, 'yahoo', now() + interval '10 minutes')
		ON CONFLICT (state) DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at
	`, state, userID)
	return err
}

// consumeState deletes the state row whether or not it had already expired
// (single-use per spec §5) and returns its stored userID; an unknown or
// expired state is returned as an error.
func (s *stateStore) consumeState(ctx context.Context, state string) (string, error) {
	var userID *string
	var expiresAt time.Time
	err := s.db.QueryRow(ctx, `
		DELETE FROM platform_oauth_states WHERE state = $1 RETURNING user_id, expires_at
	`, state).Scan(&userID, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", errors.New("invalid or expired state")
	}
	if err != nil {
		return "", err
	}
	if time.Now().After(expiresAt) {
		return "", errors.New("invalid or expired state")
	}
	if userID == nil {
		return "", nil
	}
	return *userID, nil
}
