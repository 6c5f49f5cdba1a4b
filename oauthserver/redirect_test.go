package oauthserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRedirectURI(t *testing.T) {
	SetAllowedRedirectURIs([]string{"https://claude.ai/api/mcp/auth_callback"})

	tests := []struct {
		name string
		uri  string
		want bool
	}{
		{"exact allowlisted match", "https://claude.ai/api/mcp/auth_callback", true},
		{"allowlisted with appended query is rejected", "https://claude.ai/api/mcp/auth_callback?evil=1", false},
		{"loopback 127.0.0.1 with /callback is valid", "http://127.0.0.1:9999/callback", true},
		{"loopback localhost with /oauth/callback is valid", "http://localhost:4000/oauth/callback", true},
		{"loopback with different path is rejected", "http://localhost:9999/evil", false},
		{"loopback with query-smuggled redirect is rejected", "http://localhost:3000/oauth/callback?redirect=http://evil.com", false},
		{"unrelated host is rejected", "https://evil.com/callback", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := isValidRedirectURI(tc.uri)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeriveClientName(t *testing.T) {
	assert.Equal(t, "Claude", deriveClientName("https://claude.ai/api/mcp/auth_callback"))
	assert.Equal(t, "ChatGPT", deriveClientName("https://chatgpt.com/connector_platform_oauth_redirect"))
	assert.Equal(t, "Gemini", deriveClientName("https://gemini.google.com/callback"))
	assert.Equal(t, "Development", deriveClientName("http://localhost:3000/callback"))
	assert.Equal(t, "MCP Client", deriveClientName("https://unknown-client.example.com/callback"))
}
