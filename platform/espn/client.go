package espn

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/flaim-app/auth-broker/core"
)

// ErrAuthenticationFailed covers ESPN's 401/403 responses — the cookie pair
// is rejected outright, distinct from any other non-2xx.
var ErrAuthenticationFailed = fmt.Errorf("EspnAuthenticationFailed")

// ErrDiscoveryFailed covers every other non-2xx and the empty-preferences case.
var ErrDiscoveryFailed = fmt.Errorf("AutomaticLeagueDiscoveryFailed")

type fanResponse struct {
	Preferences []struct {
		Type struct {
			Code string `json:"code"`
		} `json:"type"`
		Groups []json.RawMessage `json:"groups"`
		Metadata struct {
			Entry struct {
				GameID     int    `json:"gameId"`
				EntryID    int    `json:"entryId"`
				LeagueName string `json:"groupName"`
				SeasonID   int    `json:"seasonId"`
				EntryTeam  struct {
					TeamID   int    `json:"id"`
					Location string `json:"location"`
					Nickname string `json:"nickname"`
				} `json:"entryMetadata"`
			} `json:"entry"`
		} `json:"metadata"`
	} `json:"preferences"`
}

// fetchFanPreferences calls the ESPN Fan API and returns the filtered set of
// fantasy preferences (type.code=="fantasy" with at least one group).
func fetchFanPreferences(swid, s2 string) ([]fanPreference, error) {
	normalized := NormalizeSWID(swid)
	url := fmt.Sprintf("https://fan.api.espn.com/apis/v2/fans/%%7B%s%%7D?displayEvents=true", BareSWID(swid))

	client := &http.Client{Timeout: core.EspnFanAPITimeout}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", fmt.Sprintf("SWID=%s; espn_s2=%s", normalized, s2))
	req.Header.Set("x-p13n-swid", BareSWID(swid))
	req.Header.Set("X-Personalization-Source", "ESPN.com - FAM")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrAuthenticationFailed
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrDiscoveryFailed
	}

	var parsed fanResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, ErrDiscoveryFailed
	}

	var out []fanPreference
	for _, p := range parsed.Preferences {
		if p.Type.Code != "fantasy" || len(p.Groups) == 0 {
			continue
		}
		e := p.Metadata.Entry
		out = append(out, fanPreference{
			GameID:     e.GameID,
			LeagueID:   strconv.Itoa(e.EntryID),
			LeagueName: e.LeagueName,
			SeasonID:   e.SeasonID,
			TeamID:     strconv.Itoa(e.EntryTeam.TeamID),
			TeamName:   fmt.Sprintf("%s %s", e.EntryTeam.Location, e.EntryTeam.Nickname),
		})
	}

	if len(out) == 0 {
		return nil, ErrDiscoveryFailed
	}
	return out, nil
}

// v3LeagueMeta is the slice of the v3 API's league-info response we need:
// the league's name and the seasons it reports it was previously played in.
type v3LeagueMeta struct {
	Settings struct {
		Name string `json:"name"`
	} `json:"settings"`
	Status struct {
		PreviousSeasons []int `json:"previousSeasons"`
	} `json:"status"`
}

func espnGameSlug(gameID int) string {
	switch gameID {
	case 1:
		return "ffl"
	case 2:
		return "flb"
	case 3:
		return "fba"
	case 4:
		return "fhl"
	}
	return ""
}

// fetchLeagueMeta fetches a single league's v3 info for one season, used
// both for the league's own previousSeasons list and for re-fetching a
// historical season's display name.
func fetchLeagueMeta(swid, s2 string, gameID int, leagueID string, seasonID int) (*v3LeagueMeta, error) {
	slug := espnGameSlug(gameID)
	url := fmt.Sprintf("https://fantasy.espn.com/apis/v3/games/%s/seasons/%d/segments/0/leagues/%s", slug, seasonID, leagueID)

	body, status, err := doV3Request(swid, s2, url)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, ErrAuthenticationFailed
	}
	if status < 200 || status >= 300 {
		return nil, ErrDiscoveryFailed
	}

	var meta v3LeagueMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, ErrDiscoveryFailed
	}
	return &meta, nil
}

type v3Team struct {
	ID int `json:"id"`
}

type v3TeamsResponse struct {
	Teams []v3Team `json:"teams"`
}

// fetchLeagueTeams fetches the mStandings&mTeam view for one season, used to
// verify the user's teamId actually appeared in that historical season.
func fetchLeagueTeams(swid, s2 string, gameID int, leagueID string, seasonID int) ([]v3Team, error) {
	slug := espnGameSlug(gameID)
	url := fmt.Sprintf(
		"https://fantasy.espn.com/apis/v3/games/%s/seasons/%d/segments/0/leagues/%s?view=mStandings&view=mTeam",
		slug, seasonID, leagueID)

	body, status, err := doV3Request(swid, s2, url)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, ErrAuthenticationFailed
	}
	if status < 200 || status >= 300 {
		return nil, ErrDiscoveryFailed
	}

	var parsed v3TeamsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, ErrDiscoveryFailed
	}
	return parsed.Teams, nil
}

func doV3Request(swid, s2, url string) ([]byte, int, error) {
	client := &http.Client{Timeout: core.EspnV3APITimeout}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Cookie", fmt.Sprintf("SWID=%s; espn_s2=%s", NormalizeSWID(swid), s2))
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// teamIDPresent does the spec's "String(id)" comparison.
func teamIDPresent(teams []v3Team, teamID string) bool {
	for _, t := range teams {
		if strconv.Itoa(t.ID) == teamID {
			return true
		}
	}
	return false
}
