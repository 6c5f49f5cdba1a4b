package yahoo

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/flaim-app/auth-broker/core"
)

// fetchLeagues calls the Yahoo Fantasy API for every league the user belongs
// to across the four supported games in one request.
func fetchLeagues(accessToken string) (*fantasyContent, error) {
	client := &http.Client{Timeout: core.YahooHTTPTimeout}
	req, err := http.NewRequest(http.MethodGet,
		"https://fantasysports.yahooapis.com/fantasy/v2/users;use_login=1/games;game_keys=nfl,nba,nhl,mlb/leagues", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo leagues fetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var content fantasyContent
	if err := xml.Unmarshal(body, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// DiscoverLeagues fetches and persists every current league membership for
// userID, returning the leagues saved.
func DiscoverLeagues(store *Store, ctx context.Context, userID, accessToken string) ([]League, error) {
	content, err := fetchLeagues(accessToken)
	if err != nil {
		return nil, err
	}
	if content.Users == nil || len(content.Users.User) == 0 {
		return nil, nil
	}

	var saved []League
	for _, game := range content.Users.User[0].Games.Game {
		sport, ok := gameCodeToSport[game.Code]
		if !ok || game.Leagues == nil {
			continue
		}
		for _, l := range game.Leagues.League {
			league := League{
				UserID:     userID,
				LeagueKey:  l.LeagueKey,
				SeasonYear: l.Season,
				Sport:      sport,
				LeagueName: l.Name,
			}
			if err := store.UpsertLeague(ctx, league); err != nil {
				continue
			}
			saved = append(saved, league)
		}
	}
	return saved, nil
}
