package preferences

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flaim-app/auth-broker/core"
	"github.com/flaim-app/auth-broker/platform/espn"
	"github.com/flaim-app/auth-broker/platform/sleeper"
	"github.com/flaim-app/auth-broker/platform/yahoo"
)

// ErrLeagueNotBound is returned when setDefaultLeague targets an ESPN league
// that exists but has no team bound yet.
var ErrLeagueNotBound = errors.New("league has no team bound")

// ErrLeagueNotFound is returned when setDefaultLeague targets a league the
// user hasn't saved.
var ErrLeagueNotFound = errors.New("league not found")

// Store is the user-preferences persistence layer. It holds references to
// every platform store because SetDefaultLeague must validate that the
// referenced league actually exists (and, for ESPN, has a team bound)
// before writing the default.
type Store struct {
	db      *pgxpool.Pool
	espn    *espn.Store
	sleeper *sleeper.Store
	yahoo   *yahoo.Store
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db, espn: espn.NewStore(db), sleeper: sleeper.NewStore(db), yahoo: yahoo.NewStore(db)}
}

// Get returns the user's preferences, defaulting every field to its zero
// value when no row exists yet.
func (s *Store) Get(ctx context.Context, userID string) (*Preferences, error) {
	var defaultSport *string
	var football, baseball, basketball, hockey []byte

	err := s.db.QueryRow(ctx, `
		SELECT default_sport, default_football, default_baseball, default_basketball, default_hockey
		FROM user_preferences WHERE user_id = $1
	`, userID).Scan(&defaultSport, &football, &baseball, &basketball, &hockey)

	if errors.Is(err, pgx.ErrNoRows) {
		return &Preferences{}, nil
	}
	if err != nil {
		return nil, err
	}

	prefs := &Preferences{}
	if defaultSport != nil {
		prefs.DefaultSport = *defaultSport
	}
	if err := unmarshalLeague(football, &prefs.DefaultFootball); err != nil {
		return nil, err
	}
	if err := unmarshalLeague(baseball, &prefs.DefaultBaseball); err != nil {
		return nil, err
	}
	if err := unmarshalLeague(basketball, &prefs.DefaultBasketball); err != nil {
		return nil, err
	}
	if err := unmarshalLeague(hockey, &prefs.DefaultHockey); err != nil {
		return nil, err
	}
	return prefs, nil
}

func unmarshalLeague(raw []byte, out **DefaultLeague) error {
	if len(raw) == 0 {
		return nil
	}
	var l DefaultLeague
	if err := json.Unmarshal(raw, &l); err != nil {
		return err
	}
	*out = &l
	return nil
}

// SetDefaultSport upserts the top-level defaultSport field. An empty sport
// clears it.
func (s *Store) SetDefaultSport(ctx context.Context, userID, sport string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_preferences (user_id, default_sport, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET default_sport = EXCLUDED.default_sport, updated_at = now()
	`, userID, nullIfEmpty(sport))
	return err
}

// SetDefaultLeague validates existence (and, for ESPN, team-binding on this
// specific league) before upserting default_<sport>.
func (s *Store) SetDefaultLeague(ctx context.Context, userID, platform, sport, leagueID string, seasonYear int) error {
	switch platform {
	case string(core.PlatformESPN):
		exists, err := s.espn.LeagueExists(ctx, userID, sport, leagueID, seasonYear)
		if err != nil {
			return err
		}
		if !exists {
			return ErrLeagueNotFound
		}
		hasTeam, err := s.espn.LeagueHasTeam(ctx, userID, sport, leagueID, seasonYear)
		if err != nil {
			return err
		}
		if !hasTeam {
			return ErrLeagueNotBound
		}
	case string(core.PlatformSleeper):
		exists, err := s.sleeper.LeagueExists(ctx, userID, leagueID, seasonYear)
		if err != nil {
			return err
		}
		if !exists {
			return ErrLeagueNotFound
		}
	case string(core.PlatformYahoo):
		exists, err := s.yahoo.LeagueExists(ctx, userID, leagueID, seasonYear)
		if err != nil {
			return err
		}
		if !exists {
			return ErrLeagueNotFound
		}
	default:
		return ErrLeagueNotFound
	}

	column, err := sportColumn(sport)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(DefaultLeague{Platform: platform, LeagueID: leagueID, SeasonYear: seasonYear})
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_preferences (user_id, ` + column + `, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET ` + column + ` = EXCLUDED.` + column + `, updated_at = now()
	`
	_, err = s.db.Exec(ctx, query, userID, payload)
	return err
}

// ClearDefaultLeague upserts default_<sport> = null.
func (s *Store) ClearDefaultLeague(ctx context.Context, userID, sport string) error {
	column, err := sportColumn(sport)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO user_preferences (user_id, ` + column + `, updated_at)
		VALUES ($1, NULL, now())
		ON CONFLICT (user_id) DO UPDATE SET ` + column + ` = NULL, updated_at = now()
	`
	_, err = s.db.Exec(ctx, query, userID)
	return err
}

func sportColumn(sport string) (string, error) {
	switch core.Sport(sport) {
	case core.SportFootball:
		return "default_football", nil
	case core.SportBaseball:
		return "default_baseball", nil
	case core.SportBasketball:
		return "default_basketball", nil
	case core.SportHockey:
		return "default_hockey", nil
	default:
		return "", errors.New("invalid sport")
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
