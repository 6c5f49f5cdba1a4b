package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssuerAllowed(t *testing.T) {
	tests := []struct {
		name       string
		issuer     string
		configured string
		production bool
		want       bool
	}{
		{
			name:       "configured issuer is allowed",
			issuer:     "https://idp.example.com",
			configured: "https://idp.example.com",
			want:       true,
		},
		{
			name:   "fixed production issuer is always allowed",
			issuer: "https://auth.flaim.app",
			want:   true,
		},
		{
			name:       "clerk dev suffix allowed outside production",
			issuer:     "https://my-tenant.clerk.accounts.dev",
			production: false,
			want:       true,
		},
		{
			name:       "clerk dev suffix rejected in production",
			issuer:     "https://my-tenant.clerk.accounts.dev",
			production: true,
			want:       false,
		},
		{
			name:   "suffix match only, not substring match",
			issuer: "https://evil.com/.clerk.accounts.dev.attacker.net",
			want:   false,
		},
		{
			name:   "unrelated issuer rejected",
			issuer: "https://not-allowed.example.com",
			want:   false,
		},
		{
			name:   "empty issuer rejected",
			issuer: "",
			want:   false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("IDP_ISSUER", tc.configured)
			t.Setenv("ENVIRONMENT", map[bool]string{true: "production", false: "development"}[tc.production])
			assert.Equal(t, tc.want, issuerAllowed(tc.issuer))
		})
	}
}
