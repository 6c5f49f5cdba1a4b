package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/flaim-app/auth-broker/core"
)

// ErrTokenExchangeFailed covers any failed authorization-code exchange,
// including a response that omits refresh_token.
var ErrTokenExchangeFailed = errors.New("token_exchange_failed")

// ErrRefreshFailed covers a failed proactive or explicit refresh.
var ErrRefreshFailed = errors.New("refresh_failed")

// NewConfig builds the oauth2.Config for Yahoo's fixed fspt-r scope,
// reading YAHOO_CLIENT_ID/YAHOO_CLIENT_SECRET and deriving the callback URL
// from YAHOO_CALLBACK_URL or BaseURL()+/connect/yahoo/callback.
func NewConfig() *oauth2.Config {
	redirectURL := os.Getenv("YAHOO_CALLBACK_URL")
	if redirectURL == "" {
		redirectURL = core.BaseURL() + "/connect/yahoo/callback"
	}

	return &oauth2.Config{
		ClientID:     os.Getenv("YAHOO_CLIENT_ID"),
		ClientSecret: os.Getenv("YAHOO_CLIENT_SECRET"),
		Scopes:       []string{"fspt-r"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://api.login.yahoo.com/oauth2/request_auth",
			TokenURL: "https://api.login.yahoo.com/oauth2/get_token",
		},
		RedirectURL: redirectURL,
	}
}

// Exchange trades an authorization code for a token pair using HTTP Basic
// client auth, per §4.3.2. A response missing refresh_token is treated as a
// failed exchange even if Yahoo returned 200.
func Exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	httpClient := &http.Client{Timeout: core.YahooHTTPTimeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}
	if token.RefreshToken == "" {
		return nil, ErrTokenExchangeFailed
	}
	return token, nil
}

// Refresh exchanges a stored refresh token for a new access token. A 400
// response (invalid_grant, typically an already-rotated refresh token) maps
// to ErrRefreshFailed without touching the caller's stored refresh token.
func Refresh(ctx context.Context, cfg *oauth2.Config, refreshToken string) (*oauth2.Token, error) {
	httpClient := &http.Client{Timeout: core.YahooHTTPTimeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	src := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	return token, nil
}

// EnsureFresh returns a valid access token for userID, performing a
// synchronous refresh when the stored token is within 5 minutes of
// expiring, per testable property 9. Refresh failure leaves the stored
// refresh token untouched and returns ErrRefreshFailed.
func EnsureFresh(ctx context.Context, store *Store, cfg *oauth2.Config, userID string) (*Credential, error) {
	cred, err := store.GetCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, errors.New("not_connected")
	}

	if !cred.NeedsRefresh(time.Now()) {
		return cred, nil
	}

	token, err := Refresh(ctx, cfg, cred.RefreshToken)
	if err != nil {
		return nil, ErrRefreshFailed
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = cred.RefreshToken
	}
	if err := store.UpdateTokens(ctx, userID, token.AccessToken, refreshToken, token.Expiry); err != nil {
		return nil, err
	}

	cred.AccessToken = token.AccessToken
	cred.RefreshToken = refreshToken
	cred.ExpiresAt = token.Expiry
	return cred, nil
}
