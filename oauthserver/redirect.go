package oauthserver

import (
	"net/url"
	"strings"
)

// allowedRedirectURIs is the exact-match allowlist of AI-client MCP callback
// URLs. Populated from ALLOWED_REDIRECT_URIS (comma-separated) at wiring
// time via SetAllowedRedirectURIs; defaults cover the documented Claude and
// ChatGPT MCP callbacks.
var allowedRedirectURIs = map[string]bool{
	"https://claude.ai/api/mcp/auth_callback":               true,
	"https://chatgpt.com/connector_platform_oauth_redirect": true,
}

// SetAllowedRedirectURIs replaces the exact-match allowlist, called once at
// startup with the operator-configured set.
func SetAllowedRedirectURIs(uris []string) {
	allowedRedirectURIs = make(map[string]bool, len(uris))
	for _, u := range uris {
		allowedRedirectURIs[u] = true
	}
}

// isValidRedirectURI implements the §4.2.6 policy: exact match against the
// allowlist, or a loopback URL (localhost/127.0.0.1, any port) whose path is
// exactly /callback or /oauth/callback. Prefix matches (an allowlisted URL
// plus an appended query string) are rejected — url.Parse's query is
// separated out before the host/path comparison, so a crafted
// "...&redirect=evil" suffix cannot smuggle a match.
func isValidRedirectURI(raw string) bool {
	if allowedRedirectURIs[raw] {
		return true
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		return false
	}
	if u.RawQuery != "" {
		return false
	}

	return u.Path == "/callback" || u.Path == "/oauth/callback"
}

// deriveClientName maps a redirect_uri's host to a human-readable client
// label when the caller did not supply client_name explicitly, preserved
// across refresh per spec §9.
func deriveClientName(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "MCP Client"
	}
	host := u.Hostname()

	switch {
	case strings.Contains(host, "claude.ai"):
		return "Claude"
	case strings.Contains(host, "chatgpt.com") || strings.Contains(host, "openai.com"):
		return "ChatGPT"
	case strings.Contains(host, "gemini") || strings.Contains(host, "google.com"):
		return "Gemini"
	case host == "localhost" || host == "127.0.0.1":
		return "Development"
	default:
		return "MCP Client"
	}
}
