package yahoo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flaim-app/auth-broker/core"
)

// Store is the Yahoo credential and league persistence layer. The refresh
// token is the only secret this service encrypts at rest (core.Encrypt) —
// every other stored credential relies on the database itself as the trust
// boundary, per spec's non-goals.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// UpsertCredentials writes or replaces the user's Yahoo token pair.
func (s *Store) UpsertCredentials(ctx context.Context, userID, accessToken, refreshToken string, expiresAt time.Time, guid string) error {
	encrypted, err := core.Encrypt(refreshToken)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO yahoo_credentials (user_id, access_token, refresh_token, expires_at, yahoo_guid, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			yahoo_guid = EXCLUDED.yahoo_guid,
			updated_at = now()
	`, userID, accessToken, encrypted, expiresAt, nullIfEmpty(guid))
	return err
}

// UpdateTokens rewrites the token pair after a refresh, without touching guid.
func (s *Store) UpdateTokens(ctx context.Context, userID, accessToken, refreshToken string, expiresAt time.Time) error {
	encrypted, err := core.Encrypt(refreshToken)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		UPDATE yahoo_credentials SET access_token=$2, refresh_token=$3, expires_at=$4, updated_at=now()
		WHERE user_id=$1
	`, userID, accessToken, encrypted, expiresAt)
	return err
}

// GetCredentials returns the decrypted credential row, or nil if none exists.
func (s *Store) GetCredentials(ctx context.Context, userID string) (*Credential, error) {
	var c Credential
	var encryptedRefresh string
	var guid *string
	err := s.db.QueryRow(ctx, `
		SELECT user_id, access_token, refresh_token, expires_at, yahoo_guid
		FROM yahoo_credentials WHERE user_id = $1
	`, userID).Scan(&c.UserID, &c.AccessToken, &encryptedRefresh, &c.ExpiresAt, &guid)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	refresh, err := core.Decrypt(encryptedRefresh)
	if err != nil {
		return nil, err
	}
	c.RefreshToken = refresh
	if guid != nil {
		c.YahooGUID = *guid
	}
	return &c, nil
}

// DeleteCredentials removes the credential row and every Yahoo league for
// the user.
func (s *Store) DeleteCredentials(ctx context.Context, userID string) error {
	_, credErr := s.db.Exec(ctx, `DELETE FROM yahoo_credentials WHERE user_id = $1`, userID)
	_, leagueErr := s.db.Exec(ctx, `DELETE FROM yahoo_leagues WHERE user_id = $1`, userID)
	if credErr != nil {
		return credErr
	}
	return leagueErr
}

// UpsertLeague writes or replaces a (user, leagueKey, seasonYear) row.
func (s *Store) UpsertLeague(ctx context.Context, l League) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO yahoo_leagues (user_id, league_key, season_year, sport, league_name, team_key, team_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, league_key, season_year) DO UPDATE SET
			sport = EXCLUDED.sport,
			league_name = EXCLUDED.league_name,
			team_key = EXCLUDED.team_key,
			team_name = EXCLUDED.team_name
	`, l.UserID, l.LeagueKey, l.SeasonYear, l.Sport, l.LeagueName, nullIfEmpty(l.TeamKey), nullIfEmpty(l.TeamName))
	return err
}

// ListLeagues returns every Yahoo league row for a user.
func (s *Store) ListLeagues(ctx context.Context, userID string) ([]League, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, league_key, season_year, coalesce(sport,''), coalesce(league_name,''), coalesce(team_key,''), coalesce(team_name,'')
		FROM yahoo_leagues WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []League
	for rows.Next() {
		var l League
		if err := rows.Scan(&l.UserID, &l.LeagueKey, &l.SeasonYear, &l.Sport, &l.LeagueName, &l.TeamKey, &l.TeamName); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LeagueExists probes the composite key.
func (s *Store) LeagueExists(ctx context.Context, userID, leagueKey string, seasonYear int) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM yahoo_leagues WHERE user_id=$1 AND league_key=$2 AND season_year=$3)
	`, userID, leagueKey, seasonYear).Scan(&exists)
	return exists, err
}

// RemoveLeague deletes a single Yahoo league row by id.
func (s *Store) RemoveLeague(ctx context.Context, userID, leagueKey string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM yahoo_leagues WHERE user_id=$1 AND league_key=$2`, userID, leagueKey)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
