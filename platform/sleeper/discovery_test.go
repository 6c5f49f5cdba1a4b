package sleeper

import "testing"

func TestParseSeasonYear(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2024", 2024},
		{"", 0},
		{"not-a-year", 0},
	}
	for _, tc := range cases {
		if got := parseSeasonYear(tc.in); got != tc.want {
			t.Errorf("parseSeasonYear(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestWalkHistoryStopsWithoutPreviousLeague(t *testing.T) {
	current := sleeperLeague{LeagueID: "1", Name: "Current", Season: "2026"}
	chain := walkHistory(current, 3)
	if len(chain) != 1 {
		t.Fatalf("expected chain of 1 when there's no previous_league_id, got %d", len(chain))
	}
	if chain[0].LeagueID != "1" {
		t.Errorf("expected the chain to start with the current league")
	}
}
