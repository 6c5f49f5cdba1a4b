package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"log"
	"os"

	"github.com/flaim-app/auth-broker/core"
)

// tryEvalAPIKey resolves the eval mode per §4.1 step 2: constant-time
// comparison over SHA-256 digests of the bearer token against the
// configured EVAL_API_KEY, resolving to EVAL_USER_ID with scope mcp:read.
func tryEvalAPIKey(token, expectedResource string) (*AuthResult, *AuthError) {
	configuredKey := os.Getenv("EVAL_API_KEY")
	if configuredKey == "" {
		return nil, nil
	}

	configuredUserID := os.Getenv("EVAL_USER_ID")
	if configuredUserID == "" {
		log.Println("[Auth] EVAL_API_KEY is set but EVAL_USER_ID is not — skipping eval auth")
		return nil, nil
	}

	want := sha256.Sum256([]byte(configuredKey))
	got := sha256.Sum256([]byte(token))
	if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
		return nil, nil
	}

	if expectedResource != "" {
		allowlist := evalResourceAllowlist(core.BaseURL())
		if !allowlist[expectedResource] {
			return nil, ErrResourceNotAllowed
		}
	}

	return &AuthResult{
		UserID:   configuredUserID,
		AuthType: AuthTypeEval,
		Scope:    core.ScopeRead,
	}, nil
}
