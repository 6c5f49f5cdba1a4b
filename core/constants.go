package core

import "time"

// =============================================================================
// Auth (JWKS / IdP)
// =============================================================================

const (
	JWKSCacheTTL      = 5 * time.Minute
	JWKSProdTimeout   = 5 * time.Second
	JWKSDevTimeout    = 10 * time.Second
	JWKSDevRetries    = 1
	JWKSStaleGraceMax = time.Hour
	ProductionIssuer  = "https://auth.flaim.app"
	ClerkDevSuffix    = ".clerk.accounts.dev"
)

// =============================================================================
// OAuth authorization server
// =============================================================================

const (
	OAuthCodeTTL         = 10 * time.Minute
	OAuthStateTTL        = 10 * time.Minute
	OAuthAccessTokenTTL  = time.Hour
	OAuthRefreshTokenTTL = 7 * 24 * time.Hour
	OAuthCodeBytes       = 32
	OAuthTokenBytes      = 32
	OAuthStateBytes      = 16
	OAuthClientIDPrefix  = "mcp_"
	ScopeRead            = "mcp:read"
	ScopeWrite           = "mcp:write"
)

// =============================================================================
// Rate limiting (DB-backed daily counter)
// =============================================================================

const (
	RawCredentialsDailyLimit = 200
)

// =============================================================================
// HTTP timeouts
// =============================================================================

const (
	HealthCheckTimeout = 2 * time.Second
	EspnFanAPITimeout  = 10 * time.Second
	EspnV3APITimeout   = 7 * time.Second
	YahooHTTPTimeout   = 10 * time.Second
	SleeperHTTPTimeout = 10 * time.Second
)

// =============================================================================
// Database pool
// =============================================================================

const (
	DBMaxConns        = 20
	DBMinConns        = 2
	DBMaxConnIdleTime = 30 * time.Minute
	DBMaxRetries      = 5
	DBRetryDelay      = 2 * time.Second
)

// =============================================================================
// Cache TTLs / Redis key prefixes
// =============================================================================

const (
	LeaguesCacheTTL         = 30 * time.Second
	RedisLeaguesCachePrefix = "cache:leagues:"
)

// =============================================================================
// Credential limits
// =============================================================================

const (
	MaxLeaguesPerUser = 10
	// MaxHistoricalDepth bounds Sleeper's previous_league_id walk. ESPN's
	// status.previousSeasons walk visits every listed season.
	MaxHistoricalDepth = 5
)

// =============================================================================
// Miscellaneous
// =============================================================================

const (
	DefaultPort           = "8080"
	DefaultAllowedOrigins = "https://claude.ai,https://chatgpt.com"
	DefaultFrontendURL    = "https://app.flaim.app"
	HSTSMaxAge            = 5184000
	IPRateLimitWindow     = time.Minute
)
