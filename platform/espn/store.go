package espn

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flaim-app/auth-broker/core"
)

// espnLeagueCapSQLState is the ERRCODE the 0003 migration's
// enforce_espn_league_cap trigger raises when an insert would push a user
// past core.MaxLeaguesPerUser. The trigger is the authoritative cap
// enforcement — it takes a per-user advisory lock before counting, so it
// stays correct under concurrent inserts (e.g. discovery's sibling-league
// fan-out) in a way an application-side count-then-insert can't.
const espnLeagueCapSQLState = "P0001"

// isLeagueCapError reports whether err is the cap trigger firing.
func isLeagueCapError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == espnLeagueCapSQLState
}

// ErrLeagueLimitExceeded is returned when a save would push a user's total
// ESPN league count past core.MaxLeaguesPerUser.
var ErrLeagueLimitExceeded = errors.New("league limit exceeded")

// Store is the ESPN credential and league persistence layer.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// UpsertCredentials writes or replaces the user's ESPN cookie pair.
func (s *Store) UpsertCredentials(ctx context.Context, userID, swid, s2, email string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO espn_credentials (user_id, swid, s2, email, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE SET
			swid = EXCLUDED.swid, s2 = EXCLUDED.s2, email = EXCLUDED.email, updated_at = now()
	`, userID, swid, s2, email)
	return err
}

// GetCredentials returns the raw credential row, or nil if none exists.
func (s *Store) GetCredentials(ctx context.Context, userID string) (*Credential, error) {
	var c Credential
	var email *string
	err := s.db.QueryRow(ctx, `
		SELECT user_id, swid, s2, email, updated_at FROM espn_credentials WHERE user_id = $1
	`, userID).Scan(&c.UserID, &c.SWID, &c.S2, &email, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if email != nil {
		c.Email = *email
	}
	return &c, nil
}

// DeleteCredentials removes the credential row and every ESPN league for the
// user. Two statements, both attempted; the first error (if any) is
// returned, but the second delete still runs so a league-table failure
// doesn't leave orphaned rows behind the credential row.
func (s *Store) DeleteCredentials(ctx context.Context, userID string) error {
	_, credErr := s.db.Exec(ctx, `DELETE FROM espn_credentials WHERE user_id = $1`, userID)
	_, leagueErr := s.db.Exec(ctx, `DELETE FROM espn_leagues WHERE user_id = $1`, userID)
	if credErr != nil {
		return credErr
	}
	return leagueErr
}

// Metadata is the derived, non-secret view of a user's ESPN setup.
type Metadata struct {
	HasCredentials bool
	Email          string
	LastUpdated    time.Time
	HasLeagues     bool
	HasDefaultTeam bool
}

// GetMetadata computes the setup-status shape for /credentials/espn. A row
// with empty swid/s2 counts as not having credentials — presence alone is
// insufficient per spec.
func (s *Store) GetMetadata(ctx context.Context, userID string) (*Metadata, error) {
	cred, err := s.GetCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	meta := &Metadata{}
	if cred != nil && cred.SWID != "" && cred.S2 != "" {
		meta.HasCredentials = true
		meta.Email = cred.Email
		meta.LastUpdated = cred.UpdatedAt
	}

	var leagueCount, boundCount int
	err = s.db.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE team_id IS NOT NULL AND team_id != '')
		FROM espn_leagues WHERE user_id = $1
	`, userID).Scan(&leagueCount, &boundCount)
	if err != nil {
		return nil, err
	}
	meta.HasLeagues = leagueCount > 0
	meta.HasDefaultTeam = boundCount > 0

	return meta, nil
}

// LeagueExists probes the composite key.
func (s *Store) LeagueExists(ctx context.Context, userID, sport, leagueID string, seasonYear int) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM espn_leagues WHERE user_id=$1 AND sport=$2 AND league_id=$3 AND season_year=$4)
	`, userID, sport, leagueID, seasonYear).Scan(&exists)
	return exists, err
}

// LeagueHasTeam reports whether the specific (user, sport, leagueId,
// seasonYear) row has a team bound — unlike GetMetadata's HasDefaultTeam,
// which reports whether *any* of the user's ESPN leagues has one, this is
// scoped to the one league a caller is about to act on.
func (s *Store) LeagueHasTeam(ctx context.Context, userID, sport, leagueID string, seasonYear int) (bool, error) {
	var hasTeam bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM espn_leagues
			WHERE user_id=$1 AND sport=$2 AND league_id=$3 AND season_year=$4
			AND team_id IS NOT NULL AND team_id != ''
		)
	`, userID, sport, leagueID, seasonYear).Scan(&hasTeam)
	return hasTeam, err
}

// LeagueCount returns the user's total ESPN (league, season) row count,
// used to enforce core.MaxLeaguesPerUser before an insert.
func (s *Store) LeagueCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM espn_leagues WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// SaveLeague inserts a new (user, sport, leagueId, seasonYear) row. Callers
// must check LeagueExists first; this does not upsert — a duplicate insert
// here is a caller bug, not a conflict to swallow. The LeagueCount check
// below is only a fast path for a friendly error on the common single-caller
// case; the database trigger from the 0003 migration is what actually
// enforces the cap when callers race each other (see isLeagueCapError).
func (s *Store) SaveLeague(ctx context.Context, l League) error {
	count, err := s.LeagueCount(ctx, l.UserID)
	if err != nil {
		return err
	}
	if count >= core.MaxLeaguesPerUser {
		return ErrLeagueLimitExceeded
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO espn_leagues (user_id, sport, league_id, season_year, team_id, team_name, league_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, l.UserID, l.Sport, l.LeagueID, l.SeasonYear, nullIfEmpty(l.TeamID), nullIfEmpty(l.TeamName), nullIfEmpty(l.LeagueName))
	if isLeagueCapError(err) {
		return ErrLeagueLimitExceeded
	}
	return err
}

// RemoveLeague deletes every season row for (user, leagueId, sport),
// returning true iff at least one row was removed.
func (s *Store) RemoveLeague(ctx context.Context, userID, leagueID, sport string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM espn_leagues WHERE user_id=$1 AND league_id=$2 AND sport=$3
	`, userID, leagueID, sport)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListLeagues returns every ESPN league row for a user.
func (s *Store) ListLeagues(ctx context.Context, userID string) ([]League, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, sport, league_id, season_year, coalesce(team_id,''), coalesce(team_name,''), coalesce(league_name,'')
		FROM espn_leagues WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []League
	for rows.Next() {
		var l League
		if err := rows.Scan(&l.UserID, &l.Sport, &l.LeagueID, &l.SeasonYear, &l.TeamID, &l.TeamName, &l.LeagueName); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ReplaceLeagues performs a delete-then-insert bulk replace, enforcing
// core.MaxLeaguesPerUser on the incoming set.
func (s *Store) ReplaceLeagues(ctx context.Context, userID string, leagues []League) error {
	if len(leagues) > core.MaxLeaguesPerUser {
		return ErrLeagueLimitExceeded
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM espn_leagues WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, l := range leagues {
		_, err := tx.Exec(ctx, `
			INSERT INTO espn_leagues (user_id, sport, league_id, season_year, team_id, team_name, league_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, userID, l.Sport, l.LeagueID, l.SeasonYear, nullIfEmpty(l.TeamID), nullIfEmpty(l.TeamName), nullIfEmpty(l.LeagueName))
		if isLeagueCapError(err) {
			return ErrLeagueLimitExceeded
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SetTeam binds a teamId (and optionally teamName/leagueName) to an existing
// league row.
func (s *Store) SetTeam(ctx context.Context, userID, sport, leagueID string, seasonYear int, teamID, teamName, leagueName string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE espn_leagues SET
			team_id = $5,
			team_name = COALESCE(NULLIF($6, ''), team_name),
			league_name = COALESCE(NULLIF($7, ''), league_name)
		WHERE user_id=$1 AND sport=$2 AND league_id=$3 AND season_year=$4
	`, userID, sport, leagueID, seasonYear, teamID, teamName, leagueName)
	return err
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
