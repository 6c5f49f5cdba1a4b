package sleeper

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/flaim-app/auth-broker/core"
	"github.com/flaim-app/auth-broker/season"
)

// DiscoveryResult aggregates the outcome of a per-sport fan-out discovery run.
type DiscoveryResult struct {
	Success           bool     `json:"success"`
	LeaguesFound      int      `json:"leagues_found"`
	SeasonsDiscovered int      `json:"seasons_discovered"`
	Warning           string   `json:"warning,omitempty"`
	Leagues           []League `json:"leagues"`
}

// Discover looks up the Sleeper username, links the identity, then fans out
// per sport with allSettled semantics: each sport's goroutine runs to
// completion independently, so one sport's failure never cancels or
// shadows the other's results.
func Discover(ctx context.Context, store *Store, userID, username string) (*DiscoveryResult, error) {
	user, err := fetchUser(username)
	if err != nil {
		return nil, err
	}

	if err := store.UpsertConnection(ctx, userID, user.UserID, username); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var allLeagues []League
	var sportErrors []string
	seasonsSeen := make(map[int]bool)

	for sport, slug := range sleeperSportSlug {
		wg.Add(1)
		go func(sport, slug string) {
			defer wg.Done()
			leagues, seasons, err := discoverSport(ctx, store, userID, user.UserID, sport, slug)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[Sleeper Discovery] sport %s failed: %v", sport, err)
				sportErrors = append(sportErrors, sport)
				return
			}
			allLeagues = append(allLeagues, leagues...)
			for _, y := range seasons {
				seasonsSeen[y] = true
			}
		}(sport, slug)
	}
	wg.Wait()

	result := &DiscoveryResult{
		LeaguesFound:      len(allLeagues),
		SeasonsDiscovered: len(seasonsSeen),
		Leagues:           allLeagues,
		Success:           len(allLeagues) > 0,
	}
	if len(allLeagues) == 0 && len(sportErrors) > 0 {
		result.Warning = "one or more sports failed to fetch and no leagues were found"
	}
	return result, nil
}

// discoverSport fetches the current-season leagues for one sport, matches
// roster ownership, saves each, and walks previous_league_id up to
// core.MaxHistoricalDepth.
func discoverSport(ctx context.Context, store *Store, userID, sleeperUserID, sport, slug string) ([]League, []int, error) {
	currentYear := season.GetDefaultSeasonYear(core.Sport(sport), time.Now())

	leagues, err := fetchLeagues(sleeperUserID, slug, currentYear)
	if err != nil {
		return nil, nil, err
	}

	var saved []League
	var seasons []int

	for _, l := range leagues {
		chain := walkHistory(l, core.MaxHistoricalDepth)
		for _, entry := range chain {
			year := parseSeasonYear(entry.Season)
			exists, err := store.LeagueExists(ctx, userID, entry.LeagueID, year)
			if err != nil {
				log.Printf("[Sleeper Discovery] exists check failed for %s: %v", entry.LeagueID, err)
				continue
			}
			if exists {
				continue
			}

			rosterID := matchRosterID(entry.LeagueID, sleeperUserID)

			league := League{
				UserID:     userID,
				LeagueID:   entry.LeagueID,
				SeasonYear: year,
				Sport:      sport,
				LeagueName: entry.Name,
				RosterID:   rosterID,
			}
			if err := store.SaveLeague(ctx, league); err != nil {
				log.Printf("[Sleeper Discovery] save failed for %s: %v", entry.LeagueID, err)
				continue
			}
			saved = append(saved, league)
			seasons = append(seasons, year)
		}
	}

	return saved, seasons, nil
}

// walkHistory follows previous_league_id up to depth links, starting from
// the current season's league record.
func walkHistory(current sleeperLeague, depth int) []sleeperLeague {
	chain := []sleeperLeague{current}
	cursor := current
	for i := 0; i < depth && cursor.PreviousLeagueID != ""; i++ {
		prev, err := fetchLeagueByID(cursor.PreviousLeagueID)
		if err != nil {
			break
		}
		chain = append(chain, *prev)
		cursor = *prev
	}
	return chain
}

func matchRosterID(leagueID, sleeperUserID string) string {
	rosters, err := fetchRosters(leagueID)
	if err != nil {
		return ""
	}
	for _, r := range rosters {
		if r.OwnerID == sleeperUserID {
			return strconv.Itoa(r.RosterID)
		}
	}
	return ""
}

func parseSeasonYear(s string) int {
	year, _ := strconv.Atoi(s)
	return year
}
