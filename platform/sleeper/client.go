package sleeper

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/flaim-app/auth-broker/core"
)

// ErrUserNotFound covers Sleeper's documented "200 with a null body" not-found case.
var ErrUserNotFound = fmt.Errorf("sleeper user not found")

func sleeperGet(url string, out interface{}) error {
	client := &http.Client{Timeout: core.SleeperHTTPTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sleeper API %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if string(body) == "null" {
		return ErrUserNotFound
	}
	return json.Unmarshal(body, out)
}

func fetchUser(username string) (*sleeperUser, error) {
	var u sleeperUser
	if err := sleeperGet(fmt.Sprintf("https://api.sleeper.app/v1/user/%s", username), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func fetchLeagues(sleeperUserID, sportSlug string, seasonYear int) ([]sleeperLeague, error) {
	var leagues []sleeperLeague
	url := fmt.Sprintf("https://api.sleeper.app/v1/user/%s/leagues/%s/%d", sleeperUserID, sportSlug, seasonYear)
	if err := sleeperGet(url, &leagues); err != nil {
		return nil, err
	}
	return leagues, nil
}

func fetchRosters(leagueID string) ([]sleeperRoster, error) {
	var rosters []sleeperRoster
	url := fmt.Sprintf("https://api.sleeper.app/v1/league/%s/rosters", leagueID)
	if err := sleeperGet(url, &rosters); err != nil {
		return nil, err
	}
	return rosters, nil
}

func fetchLeagueByID(leagueID string) (*sleeperLeague, error) {
	var l sleeperLeague
	url := fmt.Sprintf("https://api.sleeper.app/v1/league/%s", leagueID)
	if err := sleeperGet(url, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
