package sleeper

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Sleeper connection and league persistence layer.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// UpsertConnection writes or replaces the user's Sleeper identity linkage.
func (s *Store) UpsertConnection(ctx context.Context, userID, sleeperUserID, sleeperUsername string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sleeper_connections (user_id, sleeper_user_id, sleeper_username, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE SET
			sleeper_user_id = EXCLUDED.sleeper_user_id,
			sleeper_username = EXCLUDED.sleeper_username,
			updated_at = now()
	`, userID, sleeperUserID, sleeperUsername)
	return err
}

// GetConnection returns the stored connection, or nil if none exists.
func (s *Store) GetConnection(ctx context.Context, userID string) (*Connection, error) {
	var c Connection
	err := s.db.QueryRow(ctx, `
		SELECT user_id, sleeper_user_id, sleeper_username FROM sleeper_connections WHERE user_id = $1
	`, userID).Scan(&c.UserID, &c.SleeperUserID, &c.SleeperUsername)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// LeagueExists probes the composite key.
func (s *Store) LeagueExists(ctx context.Context, userID, leagueID string, seasonYear int) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM sleeper_leagues WHERE user_id=$1 AND league_id=$2 AND season_year=$3)
	`, userID, leagueID, seasonYear).Scan(&exists)
	return exists, err
}

// SaveLeague inserts a new (user, leagueId, seasonYear) row.
func (s *Store) SaveLeague(ctx context.Context, l League) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sleeper_leagues (user_id, league_id, season_year, sport, league_name, roster_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.UserID, l.LeagueID, l.SeasonYear, l.Sport, l.LeagueName, nullIfEmpty(l.RosterID))
	return err
}

// ListLeagues returns every Sleeper league row for a user.
func (s *Store) ListLeagues(ctx context.Context, userID string) ([]League, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, league_id, season_year, sport, coalesce(league_name,''), coalesce(roster_id,'')
		FROM sleeper_leagues WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []League
	for rows.Next() {
		var l League
		if err := rows.Scan(&l.UserID, &l.LeagueID, &l.SeasonYear, &l.Sport, &l.LeagueName, &l.RosterID); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
