package auth

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"

	"github.com/flaim-app/auth-broker/core"
)

// issuerJWKS wraps a keyfunc.JWKS with the bookkeeping for the staleness
// check. lastSuccess is the time of the initial fetch; keyfunc's background
// refreshes do not update it. After a failed background refresh keyfunc keeps
// serving its last-fetched keys in every environment, and a stale entry is
// logged by validateIdPToken, not rejected.
type issuerJWKS struct {
	jwks        *keyfunc.JWKS
	createdAt   time.Time
	lastSuccess time.Time
	production  bool
}

var (
	jwksMu       sync.Mutex
	jwksRegistry = map[string]*issuerJWKS{}
)

// jwksFor returns the cached JWKS for issuer, creating it on first use.
// Entries are cached for the lifetime of the process and refreshed
// internally by keyfunc on its own RefreshInterval — this just governs the
// initial fetch's timeout/retry policy and the issuer-keyed cache.
func jwksFor(issuer string, production bool) (*issuerJWKS, error) {
	jwksMu.Lock()
	if entry, ok := jwksRegistry[issuer]; ok {
		jwksMu.Unlock()
		return entry, nil
	}
	jwksMu.Unlock()

	jwksURL := strings.TrimSuffix(issuer, "/") + "/.well-known/jwks.json"

	timeout := core.JWKSProdTimeout
	retries := 0
	if !production {
		timeout = core.JWKSDevTimeout
		retries = core.JWKSDevRetries
	}

	var jwks *keyfunc.JWKS
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		jwks, err = keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshErrorHandler: func(err error) {
				log.Printf("[Auth] JWKS background refresh failed for %s: %v", issuer, err)
			},
			RefreshInterval:   core.JWKSCacheTTL,
			RefreshTimeout:    timeout,
			RefreshUnknownKID: true,
		})
		if err == nil {
			break
		}
		log.Printf("[Auth] JWKS fetch attempt %d/%d failed for %s: %v", attempt+1, retries+1, issuer, err)
	}

	entry := &issuerJWKS{createdAt: time.Now(), production: production}
	if err != nil {
		if production {
			return nil, fmt.Errorf("fetch jwks for %s: %w", issuer, err)
		}
		// A failed initial fetch is not cached, so there are no earlier keys to
		// fall back to; the next call for this issuer fetches again.
		return nil, fmt.Errorf("fetch jwks for %s: %w", issuer, err)
	}

	entry.jwks = jwks
	entry.lastSuccess = time.Now()

	jwksMu.Lock()
	jwksRegistry[issuer] = entry
	jwksMu.Unlock()

	return entry, nil
}

// stale reports whether a non-production entry's initial fetch is older than
// JWKSStaleGraceMax. It always returns false for production entries.
func (e *issuerJWKS) stale() bool {
	if e.production {
		return false
	}
	return time.Since(e.lastSuccess) > core.JWKSStaleGraceMax
}
