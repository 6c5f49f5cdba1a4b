package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryEvalAPIKey(t *testing.T) {
	t.Setenv("EVAL_API_KEY", "super-secret-eval-key")
	t.Setenv("EVAL_USER_ID", "eval-user-1")
	t.Setenv("API_URL", "https://api.flaim.app")

	tests := []struct {
		name             string
		token            string
		expectedResource string
		wantErr          *AuthError
		validate         func(t *testing.T, result *AuthResult)
	}{
		{
			name:  "matching key with no expected resource resolves",
			token: "super-secret-eval-key",
			validate: func(t *testing.T, result *AuthResult) {
				require.NotNil(t, result)
				assert.Equal(t, "eval-user-1", result.UserID)
				assert.Equal(t, AuthTypeEval, result.AuthType)
				assert.Equal(t, "mcp:read", result.Scope)
			},
		},
		{
			name:             "matching key with allowed resource resolves",
			token:            "super-secret-eval-key",
			expectedResource: "https://api.flaim.app/mcp",
			validate: func(t *testing.T, result *AuthResult) {
				require.NotNil(t, result)
				assert.Equal(t, "eval-user-1", result.UserID)
			},
		},
		{
			name:             "matching key with disallowed resource is rejected",
			token:            "super-secret-eval-key",
			expectedResource: "https://api.flaim.app/other",
			wantErr:          ErrResourceNotAllowed,
		},
		{
			name:  "non-matching key does not resolve",
			token: "wrong-key",
			validate: func(t *testing.T, result *AuthResult) {
				assert.Nil(t, result)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result, authErr := tryEvalAPIKey(tc.token, tc.expectedResource)
			if tc.wantErr != nil {
				require.Equal(t, tc.wantErr, authErr)
				return
			}
			require.Nil(t, authErr)
			if tc.validate != nil {
				tc.validate(t, result)
			}
		})
	}
}

func TestTryEvalAPIKeyMissingEvalUserID(t *testing.T) {
	t.Setenv("EVAL_API_KEY", "super-secret-eval-key")
	t.Setenv("EVAL_USER_ID", "")

	result, authErr := tryEvalAPIKey("super-secret-eval-key", "")
	assert.Nil(t, result)
	assert.Nil(t, authErr)
}

func TestTryEvalAPIKeyUnconfigured(t *testing.T) {
	t.Setenv("EVAL_API_KEY", "")

	result, authErr := tryEvalAPIKey("anything", "")
	assert.Nil(t, result)
	assert.Nil(t, authErr)
}
