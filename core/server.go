package core

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// RouteRegistrar is implemented by each domain package so Setup can wire
// them in without core importing their concrete types.
type RouteRegistrar func(router fiber.Router)

// Server holds the Fiber app and the set of domain registrars mounted on it.
type Server struct {
	App        *fiber.App
	Registrars []RouteRegistrar
}

// NewServer creates a new Server with a configured Fiber app.
func NewServer() *Server {
	app := fiber.New(fiber.Config{
		AppName: "Flaim Auth Broker",
	})

	return &Server{
		App: app,
	}
}

// Mount registers a domain package's routes to be wired during Setup.
func (s *Server) Mount(r RouteRegistrar) {
	s.Registrars = append(s.Registrars, r)
}

// Setup configures middleware and registers all routes. Call Mount for every
// domain package before calling Setup.
func (s *Server) Setup() {
	s.setupMiddleware()
	s.setupRoutes()
}

// setupMiddleware attaches logging, eval tracing, security headers, CORS, and
// rate limiting in that order.
func (s *Server) setupMiddleware() {
	s.App.Use(logger.New())
	s.App.Use(EvalTraceMiddleware)

	// Security headers
	s.App.Use(func(c *fiber.Ctx) error {
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Download-Options", "noopen")
		c.Set("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", HSTSMaxAge))
		c.Set("X-Frame-Options", "SAMEORIGIN")
		c.Set("X-DNS-Prefetch-Control", "off")
		if c.Path() == "/connect/yahoo/callback" || c.Path() == "/auth/connect/yahoo/callback" {
			// Yahoo OAuth callback returns HTML with an inline <script> (postMessage +
			// window.close). Allow that while keeping everything else locked down.
			c.Set("Content-Security-Policy", "default-src 'none'; script-src 'unsafe-inline'; style-src 'unsafe-inline'")
		} else {
			c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		}
		return c.Next()
	})

	// CORS
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = DefaultAllowedOrigins
	} else {
		origins := strings.Split(allowedOrigins, ",")
		for i, o := range origins {
			origins[i] = ValidateURL(o, "")
		}
		allowedOrigins = strings.Join(origins, ",")
	}

	s.App.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		MaxAge:           86400,
	}))

	// IP-keyed rate limiting on top of the DB-backed per-user raw-credentials
	// read limit enforced deeper in oauthserver/ratelimit.go — this is just abuse-of-the-
	// gateway protection, not the spec's rate limit.
	coreExemptPaths := map[string]bool{
		"/health": true,
	}

	s.App.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: IPRateLimitWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			return coreExemptPaths[c.Path()]
		},
	}))
}

// setupRoutes mounts the health check, landing page, and every registrar
// handed to Mount. Per §6, every domain route is reachable both bare and
// under /auth; an /auth-preview alias exists only in the preview environment
// so preview deploys can be smoke-tested without touching the primary path.
func (s *Server) setupRoutes() {
	s.App.Get("/health", s.healthCheck)
	s.App.Get("/", s.landingPage)

	authGroup := s.App.Group("/auth")

	for _, register := range s.Registrars {
		register(s.App)
		register(authGroup)
	}

	if Environment() == "preview" {
		previewGroup := s.App.Group("/auth-preview")
		for _, register := range s.Registrars {
			register(previewGroup)
		}
	}
}

// healthCheck returns the aggregated health status of the broker's direct
// dependencies. Upstream platform availability (ESPN/Yahoo/Sleeper) is not
// part of this broker's own health — those are per-request failures, not
// startup dependencies.
func (s *Server) healthCheck(c *fiber.Ctx) error {
	res := HealthResponse{Status: "healthy", Services: make(map[string]string)}

	if err := DBPool.Ping(context.Background()); err != nil {
		res.Database = "unhealthy"
		res.Status = "degraded"
	} else {
		res.Database = "healthy"
	}

	if err := Rdb.Ping(context.Background()).Err(); err != nil {
		res.Redis = "unhealthy"
		res.Status = "degraded"
	} else {
		res.Redis = "healthy"
	}

	status := fiber.StatusOK
	if res.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(res)
}

// landingPage returns basic API info.
func (s *Server) landingPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    "Flaim Auth Broker",
		"version": "1.0",
		"status":  "operational",
		"links": fiber.Map{
			"health":   "/health",
			"frontend": FrontendURL(),
		},
	})
}

// Listen starts the HTTP server on the configured port.
func (s *Server) Listen() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
	}

	log.Printf("Starting server on port %s", port)
	return s.App.Listen(":" + port)
}
