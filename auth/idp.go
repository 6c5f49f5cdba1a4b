package auth

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/flaim-app/auth-broker/core"
)

const clerkDevSuffix = ".clerk.accounts.dev"

// issuerAllowed reports whether iss is permitted by the configured allowlist:
// the operator-configured issuer, the fixed production issuer, and — outside
// production only — any host ending in .clerk.accounts.dev (suffix match on
// the host, never a raw substring match on the whole issuer string).
func issuerAllowed(iss string) bool {
	if iss == "" {
		return false
	}
	if iss == core.ConfiguredIssuer() || iss == core.ProductionIssuer {
		return true
	}
	if core.IsProduction() {
		return false
	}

	u, err := url.Parse(iss)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.HasSuffix(u.Host, clerkDevSuffix)
}

// validateIdPToken verifies an IdP-issued JWT per §4.1.1: three segments,
// RS256 with a kid, issuer allowlisted, signature verified against the
// issuer's JWKS, and a non-expired exp if present. Returns the subject.
func validateIdPToken(tokenString string) (string, error) {
	if strings.Count(tokenString, ".") != 2 {
		return "", fmt.Errorf("malformed token: expected three dot-separated segments")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))

	var claims jwt.MapClaims
	token, _, err := parser.ParseUnverified(tokenString, &claims)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if token.Header["kid"] == nil {
		return "", fmt.Errorf("token missing kid")
	}

	iss, _ := claims["iss"].(string)
	if !issuerAllowed(iss) {
		return "", fmt.Errorf("issuer %q not allowed", iss)
	}

	entry, err := jwksFor(iss, core.IsProduction())
	if err != nil {
		return "", fmt.Errorf("jwks unavailable for %s: %w", iss, err)
	}
	if entry.stale() {
		log.Printf("[Auth] serving stale JWKS for %s past grace window", iss)
	}

	verified, err := jwt.Parse(tokenString, entry.jwks.Keyfunc, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil || !verified.Valid {
		return "", fmt.Errorf("signature verification failed: %w", err)
	}

	mapClaims, ok := verified.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("token missing sub claim")
	}

	return sub, nil
}
