package yahoo

import (
	"testing"
	"time"
)

func TestCredentialNeedsRefresh(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"already expired", now.Add(-time.Minute), true},
		{"expires in 4 minutes", now.Add(4 * time.Minute), true},
		{"expires in exactly 5 minutes", now.Add(5 * time.Minute), false},
		{"expires in an hour", now.Add(time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cred := &Credential{ExpiresAt: tc.expiry}
			if got := cred.NeedsRefresh(now); got != tc.want {
				t.Errorf("NeedsRefresh() = %v, want %v", got, tc.want)
			}
		})
	}
}
