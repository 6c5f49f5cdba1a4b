package espn

import (
	"regexp"
	"strings"
)

var swidPattern = regexp.MustCompile(`^\{[0-9A-Fa-f-]{36}\}$`)

// ValidSWID reports whether swid matches ESPN's braced-UUID cookie format.
func ValidSWID(swid string) bool {
	return swidPattern.MatchString(swid)
}

// ValidS2 reports whether s2 is long enough to plausibly be an espn_s2
// cookie. ESPN doesn't publish an exact format, so length is the only
// invariant we can check.
func ValidS2(s2 string) bool {
	return len(s2) >= 50
}

// NormalizeSWID trims whitespace, strips any existing braces, and re-wraps
// the bare UUID — the Fan API calls want the braced form in one place and
// the bare form in another, so the leagues discovery client does both
// conversions off of this canonical braced value.
func NormalizeSWID(swid string) string {
	swid = strings.TrimSpace(swid)
	swid = strings.TrimPrefix(swid, "{")
	swid = strings.TrimSuffix(swid, "}")
	return "{" + swid + "}"
}

// BareSWID strips the braces for headers that want the bare UUID form.
func BareSWID(swid string) string {
	swid = strings.TrimSpace(swid)
	swid = strings.TrimPrefix(swid, "{")
	return strings.TrimSuffix(swid, "}")
}
