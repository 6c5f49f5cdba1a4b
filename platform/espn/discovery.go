package espn

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/flaim-app/auth-broker/core"
	"github.com/flaim-app/auth-broker/season"
)

// Discover runs one full Fan API enumeration plus historical traversal for
// userID, persisting every newly found (league, season) membership. Per
// §5, sibling leagues are processed concurrently while each league's own
// history walk stays sequential; every per-league goroutine swallows its own
// errors (logged, never returned) so one league's failure can't cancel the
// group or abort the rest of the run.
func Discover(ctx context.Context, store *Store, userID, swid, s2 string) (*DiscoveryResult, error) {
	prefs, err := fetchFanPreferences(swid, s2)
	if err != nil {
		return nil, err
	}

	result := &DiscoveryResult{}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, p := range prefs {
		p := p
		sport, ok := gameIDToSport[p.GameID]
		if !ok {
			continue
		}

		g.Go(func() error {
			canonicalYear := season.ToCanonicalYear(p.SeasonID, core.Sport(sport), core.PlatformESPN)

			league := League{
				UserID:     userID,
				Sport:      sport,
				LeagueID:   p.LeagueID,
				SeasonYear: canonicalYear,
				TeamID:     p.TeamID,
				TeamName:   p.TeamName,
				LeagueName: p.LeagueName,
			}

			mu.Lock()
			result.CurrentSeason.Found++
			mu.Unlock()

			mu.Lock()
			exists, err := store.LeagueExists(gctx, userID, sport, p.LeagueID, canonicalYear)
			if err != nil {
				log.Printf("[ESPN Discovery] exists check failed for league %s: %v", p.LeagueID, err)
			} else if exists {
				result.CurrentSeason.AlreadySaved++
			} else if err := store.SaveLeague(gctx, league); err != nil {
				log.Printf("[ESPN Discovery] save failed for league %s: %v", p.LeagueID, err)
			} else {
				result.CurrentSeason.Added++
			}
			result.Discovered = append(result.Discovered, league)
			mu.Unlock()

			discoverHistory(gctx, store, userID, swid, s2, p, result, &mu)
			return nil
		})
	}

	_ = g.Wait()
	return result, nil
}

// discoverHistory walks a single league's status.previousSeasons, verifying
// the user's teamId appears in each historical season's team list before
// counting or storing it. mu guards the shared result across sibling
// leagues' concurrent goroutines.
func discoverHistory(ctx context.Context, store *Store, userID, swid, s2 string, p fanPreference, result *DiscoveryResult, mu *sync.Mutex) {
	meta, err := fetchLeagueMeta(swid, s2, p.GameID, p.LeagueID, p.SeasonID)
	if err != nil {
		log.Printf("[ESPN Discovery] league meta fetch failed for %s: %v", p.LeagueID, err)
		return
	}

	sport := gameIDToSport[p.GameID]

	for _, pastSeasonID := range meta.Status.PreviousSeasons {
		teams, err := fetchLeagueTeams(swid, s2, p.GameID, p.LeagueID, pastSeasonID)
		if err != nil {
			log.Printf("[ESPN Discovery] team list fetch failed for %s season %d: %v", p.LeagueID, pastSeasonID, err)
			continue
		}
		if !teamIDPresent(teams, p.TeamID) {
			// Not a member that season — per §4.4.2 this is skipped without
			// counting toward found, added, or alreadySaved.
			continue
		}

		canonicalYear := season.ToCanonicalYear(pastSeasonID, core.Sport(sport), core.PlatformESPN)
		mu.Lock()
		result.PastSeasons.Found++
		mu.Unlock()

		pastMeta, err := fetchLeagueMeta(swid, s2, p.GameID, p.LeagueID, pastSeasonID)
		leagueName := p.LeagueName
		if err == nil {
			leagueName = pastMeta.Settings.Name
		}

		league := League{
			UserID:     userID,
			Sport:      sport,
			LeagueID:   p.LeagueID,
			SeasonYear: canonicalYear,
			TeamID:     p.TeamID,
			LeagueName: leagueName,
		}

		// The exists-check-then-save pair is held under mu, the same lock the
		// current-season branch in Discover uses, so sibling leagues' goroutines
		// can't both pass the check before either saves.
		mu.Lock()
		exists, err := store.LeagueExists(ctx, userID, sport, p.LeagueID, canonicalYear)
		if err != nil {
			log.Printf("[ESPN Discovery] historical exists check failed for %s/%d: %v", p.LeagueID, canonicalYear, err)
			mu.Unlock()
			continue
		}
		if exists {
			result.PastSeasons.AlreadySaved++
			mu.Unlock()
			continue
		}
		if err := store.SaveLeague(ctx, league); err != nil {
			log.Printf("[ESPN Discovery] historical save failed for %s/%d: %v", p.LeagueID, canonicalYear, err)
			mu.Unlock()
			continue
		}
		result.PastSeasons.Added++
		result.Discovered = append(result.Discovered, league)
		mu.Unlock()
	}
}
