// Package season implements the sport→season-year calendar: timezone-pinned
// rollover, canonical↔platform year conversion, and season label formatting.
package season

import (
	"fmt"
	"time"

	"github.com/flaim-app/auth-broker/core"
)

// rolloverMonth is the 1-indexed America/New_York calendar month at which a
// sport's default season year flips forward, per spec.
var rolloverMonth = map[core.Sport]int{
	core.SportBaseball:   2,
	core.SportFootball:   7,
	core.SportBasketball: 8,
	core.SportHockey:     8,
}

// crossYear marks sports whose season label spans a calendar-year boundary
// ("2099-00") rather than a single year ("2099").
var crossYear = map[core.Sport]bool{
	core.SportBasketball: true,
	core.SportHockey:     true,
	core.SportFootball:   false,
	core.SportBaseball:   false,
}

var newYorkLocation *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// time/tzdata is not imported; fall back to UTC rather than panic.
		// This should not happen in a deployed binary with system tzdata.
		loc = time.UTC
	}
	newYorkLocation = loc
}

// GetDefaultSeasonYear returns the canonical (start-year) season for sport
// as of now, derived from the America/New_York calendar, not process-local
// or UTC time.
func GetDefaultSeasonYear(sport core.Sport, now time.Time) int {
	local := now.In(newYorkLocation)
	year, month := local.Year(), int(local.Month())

	rollover, ok := rolloverMonth[sport]
	if !ok {
		rollover = 1
	}

	if month < rollover {
		return year - 1
	}
	return year
}

// IsCurrentSeason reports whether year is the canonical season year for
// sport at time now.
func IsCurrentSeason(sport core.Sport, year int, now time.Time) bool {
	return year == GetDefaultSeasonYear(sport, now)
}

// ToPlatformYear converts a canonical season year to the platform's wire
// representation. ESPN reports basketball and hockey using the season's
// end year; every other (sport, platform) pair is identity.
func ToPlatformYear(year int, sport core.Sport, platform core.Platform) int {
	if platform == core.PlatformESPN && crossYear[sport] {
		return year + 1
	}
	return year
}

// ToCanonicalYear reverses ToPlatformYear.
func ToCanonicalYear(year int, sport core.Sport, platform core.Platform) int {
	if platform == core.PlatformESPN && crossYear[sport] {
		return year - 1
	}
	return year
}

// Label formats a canonical season year for display: "YYYY-YY" for sports
// whose season spans a calendar-year boundary, plain "YYYY" otherwise.
func Label(year int, sport core.Sport) string {
	if !crossYear[sport] {
		return fmt.Sprintf("%d", year)
	}
	endYearSuffix := (year + 1) % 100
	return fmt.Sprintf("%d-%02d", year, endYearSuffix)
}
