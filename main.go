package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/flaim-app/auth-broker/auth"
	"github.com/flaim-app/auth-broker/core"
	"github.com/flaim-app/auth-broker/leagues"
	"github.com/flaim-app/auth-broker/migrations"
	"github.com/flaim-app/auth-broker/oauthserver"
	"github.com/flaim-app/auth-broker/platform/espn"
	"github.com/flaim-app/auth-broker/platform/sleeper"
	"github.com/flaim-app/auth-broker/platform/yahoo"
	"github.com/flaim-app/auth-broker/preferences"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL must be set")
	}
	if err := migrations.Run(databaseURL); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	core.ConnectDB()
	defer core.DBPool.Close()

	core.ConnectRedis()
	defer core.Rdb.Close()

	oauthHandler := oauthserver.NewHandler(core.DBPool)
	auth.SetOAuthValidator(oauthHandler.ValidateOAuthToken)
	if uris := allowedRedirectURIs(); uris != nil {
		oauthserver.SetAllowedRedirectURIs(uris)
	}

	espnStore := espn.NewStore(core.DBPool)
	espnHandler := espn.NewHandler(espnStore)
	espnHandler.RateLimiter = oauthHandler.EnforceRawCredentialsRateLimit

	yahooHandler := yahoo.NewHandler(core.DBPool)
	sleeperHandler := sleeper.NewHandler(core.DBPool)
	preferencesHandler := preferences.NewHandler(core.DBPool)
	leaguesHandler := leagues.NewHandler(core.DBPool)

	server := core.NewServer()
	server.Mount(oauthHandler.RegisterRoutes)
	server.Mount(espnHandler.RegisterRoutes)
	server.Mount(yahooHandler.RegisterRoutes)
	server.Mount(sleeperHandler.RegisterRoutes)
	server.Mount(preferencesHandler.RegisterRoutes)
	server.Mount(leaguesHandler.RegisterRoutes)
	server.Setup()

	if err := server.Listen(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// allowedRedirectURIs reads ALLOWED_REDIRECT_URIS as a comma-separated list
// of exact-match AI-client MCP callback URLs. Loopback callbacks are always
// permitted regardless of this list. Returns nil (no override) when unset,
// leaving oauthserver's built-in Claude/ChatGPT defaults in place.
func allowedRedirectURIs() []string {
	raw := os.Getenv("ALLOWED_REDIRECT_URIS")
	if raw == "" {
		return nil
	}

	var uris []string
	for _, u := range strings.Split(raw, ",") {
		u = strings.TrimSpace(u)
		if u != "" {
			uris = append(uris, u)
		}
	}
	return uris
}
