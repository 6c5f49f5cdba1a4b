package auth

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Authenticate implements the §4.1 pipeline: IdP JWT, then (if allowed) the
// eval API key, then OAuth token. The first strategy to succeed wins; a
// verification failure in an earlier strategy is logged and falls through
// rather than failing the whole request.
func Authenticate(bearer, expectedResource string, allowEvalAPIKey bool) (*AuthResult, *AuthError) {
	if bearer == "" {
		return nil, ErrUnauthorized
	}

	if sub, err := validateIdPToken(bearer); err == nil {
		return &AuthResult{UserID: sub, AuthType: AuthTypeIdP}, nil
	} else {
		log.Printf("[Auth] IdP verification failed, falling through: %v", err)
	}

	if allowEvalAPIKey {
		result, authErr := tryEvalAPIKey(bearer, expectedResource)
		if authErr != nil {
			return nil, authErr
		}
		if result != nil {
			return result, nil
		}
	}

	result, err := tryOAuthToken(bearer, expectedResource)
	if err != nil {
		log.Printf("[Auth] OAuth token verification failed: %v", err)
		return nil, ErrUnauthorized
	}
	if result != nil {
		return result, nil
	}

	return nil, ErrUnauthorized
}

// bearerFromRequest extracts the token from the Authorization header.
func bearerFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
