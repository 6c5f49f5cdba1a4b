// Package oauthserver implements the self-hosted OAuth 2.1 authorization
// server: dynamic client registration, authorization-code grant with
// mandatory S256 PKCE, refresh-token grant, revocation, introspection, and
// RFC 8707 resource binding.
package oauthserver

import "time"

// Client is a dynamically registered public OAuth client.
type Client struct {
	ClientID     string
	RedirectURIs []string
	ClientName   string
	RegisteredAt time.Time
}

// AuthCode is a single-use authorization-code grant artifact.
type AuthCode struct {
	Code                string
	UserID              string
	RedirectURI         string
	Scope               string
	Resource            string
	CodeChallenge       string
	CodeChallengeMethod string
	ExpiresAt           time.Time
	UsedAt              *time.Time
}

// AccessToken is the durable record behind a minted access/refresh pair.
type AccessToken struct {
	AccessToken        string
	UserID             string
	Scope              string
	Resource           string
	ClientName         string
	ExpiresAt          time.Time
	RevokedAt          *time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// OAuthState is the inbound (MCP-facing) CSRF record bridging /authorize's
// redirect to the consent UI and POST /oauth/code's eventual call.
type OAuthState struct {
	State               string
	ClientID            string
	RedirectURI         string
	Scope               string
	Resource            string
	CodeChallenge       string
	CodeChallengeMethod string
	ExpiresAt           time.Time
}

// TokenResponse is the §4.2.5 /token success body.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// IntrospectResponse is the §4.2.7 /introspect body.
type IntrospectResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId,omitempty"`
	Scope  string `json:"scope,omitempty"`
	Error  string `json:"error,omitempty"`
}
