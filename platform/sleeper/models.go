package sleeper

// Connection is the stored Sleeper public-identity linkage for one user.
type Connection struct {
	UserID          string
	SleeperUserID   string
	SleeperUsername string
}

// League is one (user, leagueId, seasonYear) Sleeper membership row.
type League struct {
	UserID     string
	LeagueID   string
	SeasonYear int
	Sport      string
	LeagueName string
	RosterID   string
}

type sleeperUser struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type sleeperLeague struct {
	LeagueID         string `json:"league_id"`
	Name             string `json:"name"`
	Season           string `json:"season"`
	PreviousLeagueID string `json:"previous_league_id"`
}

type sleeperRoster struct {
	RosterID int    `json:"roster_id"`
	OwnerID  string `json:"owner_id"`
}

// sleeperSportSlug maps our sport enum to Sleeper's nfl/nba game slugs. Only
// football and basketball are offered through Sleeper per spec §4.3.3.
var sleeperSportSlug = map[string]string{
	"football":   "nfl",
	"basketball": "nba",
}
