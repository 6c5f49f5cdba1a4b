package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaim-app/auth-broker/core"
)

func TestGetDefaultSeasonYearRollover(t *testing.T) {
	tests := []struct {
		name string
		sport core.Sport
		when string
		want int
	}{
		{"baseball before Feb rollover", core.SportBaseball, "2026-01-15T17:00:00Z", 2025},
		{"baseball after Feb rollover", core.SportBaseball, "2026-02-01T05:00:00Z", 2026},
		{"football before July rollover", core.SportFootball, "2026-01-15T17:00:00Z", 2025},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			when, err := time.Parse(time.RFC3339, tc.when)
			require.NoError(t, err)
			assert.Equal(t, tc.want, GetDefaultSeasonYear(tc.sport, when))
		})
	}
}

func TestIsCurrentSeasonAlwaysTrueForDefault(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	for _, sport := range []core.Sport{core.SportFootball, core.SportBaseball, core.SportBasketball, core.SportHockey} {
		year := GetDefaultSeasonYear(sport, now)
		assert.True(t, IsCurrentSeason(sport, year, now), "sport=%s", sport)
	}
}

func TestPlatformYearRoundTrip(t *testing.T) {
	for _, sport := range []core.Sport{core.SportFootball, core.SportBaseball, core.SportBasketball, core.SportHockey} {
		platformYear := ToPlatformYear(2024, sport, core.PlatformESPN)
		assert.Equal(t, 2024, ToCanonicalYear(platformYear, sport, core.PlatformESPN))
	}
}

func TestToPlatformYearESPNQuirk(t *testing.T) {
	assert.Equal(t, 2025, ToPlatformYear(2024, core.SportBasketball, core.PlatformESPN))
	assert.Equal(t, 2025, ToPlatformYear(2024, core.SportHockey, core.PlatformESPN))
	assert.Equal(t, 2024, ToPlatformYear(2024, core.SportFootball, core.PlatformESPN))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "2099-00", Label(2099, core.SportBasketball))
	assert.Equal(t, "2099", Label(2099, core.SportFootball))
}
