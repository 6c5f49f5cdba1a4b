package auth

// OAuthValidator verifies an opaque access token minted by oauthserver,
// enforcing RFC 8707 resource binding when expectedResource is non-empty,
// and returns the principal it resolves to. oauthserver registers its
// implementation via SetOAuthValidator at startup — auth never imports
// oauthserver directly, avoiding an import cycle (oauthserver depends on
// auth for IdP-authenticated endpoints like POST /oauth/code).
type OAuthValidator func(token, expectedResource string) (userID string, scope string, err error)

var oauthValidator OAuthValidator

// SetOAuthValidator registers the OAuth access-token validator. Called once
// from main during startup wiring.
func SetOAuthValidator(v OAuthValidator) {
	oauthValidator = v
}

func tryOAuthToken(token, expectedResource string) (*AuthResult, error) {
	if oauthValidator == nil {
		return nil, nil
	}
	userID, scope, err := oauthValidator(token, expectedResource)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, nil
	}
	return &AuthResult{UserID: userID, AuthType: AuthTypeOAuth, Scope: scope}, nil
}
