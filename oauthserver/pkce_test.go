package oauthserver

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyPKCE(t *testing.T) {
	verifier := "verifier"
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	assert.True(t, verifyPKCE(verifier, challenge, "S256"))
	assert.False(t, verifyPKCE("wrong-verifier", challenge, "S256"))
	assert.True(t, verifyPKCE("plain-text", "plain-text", "plain"))
	assert.False(t, verifyPKCE("plain-text", "different", "plain"))
}

func TestRandomURLSafeTokenIsUnique(t *testing.T) {
	a, err := randomURLSafeToken(32)
	assert.NoError(t, err)
	b, err := randomURLSafeToken(32)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
