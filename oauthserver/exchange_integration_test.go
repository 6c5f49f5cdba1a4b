//go:build integration

package oauthserver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/flaim-app/auth-broker/migrations"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	require.NoError(t, migrations.Run(dbURL))

	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func withUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// TestFullAuthorizationCodeExchange runs mint-code -> token through a real
// PKCE verifier/challenge pair, then exercises the refresh_token grant
// against the token it got back — the round trip §4.2.4/§4.2.5 describe.
func TestFullAuthorizationCodeExchange(t *testing.T) {
	pool := testPool(t)
	h := NewHandler(pool)
	userID := uuid.New().String()

	app := fiber.New()
	app.Post("/mint-code", withUser(userID), h.handleMintCode)
	app.Post("/token", h.handleToken)

	verifier := "a-test-pkce-verifier-that-is-reasonably-long"
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	mintBody, _ := json.Marshal(mintCodeRequest{
		RedirectURI:         "http://127.0.0.1:9999/callback",
		Scope:               "read",
		CodeChallenge:       challenge,
		CodeChallengeMethod: "S256",
	})
	req := httptest.NewRequest(http.MethodPost, "/mint-code", bytes.NewReader(mintBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var mintResp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mintResp))
	require.NotEmpty(t, mintResp.Code)

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", mintResp.Code)
	form.Set("redirect_uri", "http://127.0.0.1:9999/callback")
	form.Set("code_verifier", verifier)

	req = httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokenResp TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokenResp))
	require.NotEmpty(t, tokenResp.AccessToken)
	require.NotEmpty(t, tokenResp.RefreshToken)

	// The same code can't be redeemed twice.
	req = httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	refreshForm := url.Values{}
	refreshForm.Set("grant_type", "refresh_token")
	refreshForm.Set("refresh_token", tokenResp.RefreshToken)

	req = httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(refreshForm.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refreshResp TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&refreshResp))
	require.NotEmpty(t, refreshResp.AccessToken)
	require.NotEqual(t, tokenResp.AccessToken, refreshResp.AccessToken)
}

// TestHandleToken_WrongCodeVerifierIsRejected exercises the PKCE
// mismatch path through the real handlers rather than verifyPKCE in
// isolation.
func TestHandleToken_WrongCodeVerifierIsRejected(t *testing.T) {
	pool := testPool(t)
	h := NewHandler(pool)
	userID := uuid.New().String()

	app := fiber.New()
	app.Post("/mint-code", withUser(userID), h.handleMintCode)
	app.Post("/token", h.handleToken)

	verifier := "a-test-pkce-verifier-that-is-reasonably-long"
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	mintBody, _ := json.Marshal(mintCodeRequest{
		RedirectURI:         "http://127.0.0.1:9999/callback",
		CodeChallenge:       challenge,
		CodeChallengeMethod: "S256",
	})
	req := httptest.NewRequest(http.MethodPost, "/mint-code", bytes.NewReader(mintBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var mintResp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mintResp))

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", mintResp.Code)
	form.Set("redirect_uri", "http://127.0.0.1:9999/callback")
	form.Set("code_verifier", "wrong-verifier")

	req = httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
