// Package auth implements the multi-mode request authenticator: identity
// provider JWTs, the static eval API key, and opaque OAuth access tokens
// minted by oauthserver, all resolving to a single AuthResult shape.
package auth

// AuthType names which of the three bearer modes produced an AuthResult.
type AuthType string

const (
	AuthTypeIdP   AuthType = "idp"
	AuthTypeOAuth AuthType = "oauth"
	AuthTypeEval  AuthType = "eval"
)

// AuthResult is what every successful authentication mode resolves to.
type AuthResult struct {
	UserID   string
	AuthType AuthType
	Scope    string
}

// AuthError carries an HTTP-status-worthy cause for a failed authentication
// attempt, distinguishing "missing/invalid credential" from the narrower
// "resource not allowed for this API key" case.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

var (
	ErrUnauthorized     = &AuthError{Message: "unauthorized"}
	ErrResourceNotAllowed = &AuthError{Message: "Resource not allowed for API key"}
)

// evalResourceAllowlist is the set of expectedResource values the eval API
// key is permitted against, relative to BaseURL(). Built on each call by
// tryEvalAPIKey since it depends on env-derived BaseURL.
func evalResourceAllowlist(baseURL string) map[string]bool {
	return map[string]bool{
		baseURL + "/mcp":         true,
		baseURL + "/fantasy/mcp": true,
	}
}
