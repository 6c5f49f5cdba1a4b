package yahoo

import (
	"encoding/xml"
	"time"
)

// XML shapes for the Yahoo Fantasy API's leagues-discovery response. Only
// the fields discovery needs are mapped; standings/roster/matchup shapes
// live downstream of this broker.
type fantasyContent struct {
	XMLName xml.Name `xml:"fantasy_content"`
	Users   *xmlUsers `xml:"users,omitempty"`
}

type xmlUsers struct {
	User []xmlUser `xml:"user"`
}

type xmlUser struct {
	GUID  string   `xml:"guid"`
	Games xmlGames `xml:"games"`
}

type xmlGames struct {
	Game []xmlGame `xml:"game"`
}

type xmlGame struct {
	Code    string      `xml:"code"`
	Leagues *xmlLeagues `xml:"leagues,omitempty"`
}

type xmlLeagues struct {
	League []xmlLeague `xml:"league"`
}

type xmlLeague struct {
	LeagueKey string `xml:"league_key"`
	Name      string `xml:"name"`
	Season    int    `xml:"season"`
}

// gameCodeToSport maps Yahoo's game code to our sport enum.
var gameCodeToSport = map[string]string{
	"nfl": "football",
	"mlb": "baseball",
	"nba": "basketball",
	"nhl": "hockey",
}

// Credential is the stored Yahoo OAuth token pair for one user.
type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	YahooGUID    string
}

// NeedsRefresh reports whether the stored access token is within the
// 5-minute proactive-refresh window of expiring.
func (c *Credential) NeedsRefresh(now time.Time) bool {
	return c.ExpiresAt.Sub(now) < 5*time.Minute
}

// League is one (user, leagueKey, seasonYear) Yahoo membership row.
type League struct {
	UserID     string
	LeagueKey  string
	SeasonYear int
	Sport      string
	LeagueName string
	TeamKey    string
	TeamName   string
}
