package oauthserver

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// randomURLSafeToken returns n raw random bytes, base64url-encoded without
// padding — used for authorization codes, access/refresh tokens, and state
// tokens alike. Grounded on stacklok-toolhive's pkg/auth/oauth/pkce.go
// GeneratePKCEParams, which uses the same crypto/rand + RawURLEncoding
// construction for its own verifier/state generation.
func randomURLSafeToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// verifyPKCE checks the code_verifier against the stored challenge. S256 is
// the only method /authorize ever accepts going forward; the plain branch
// exists solely so codes minted under an earlier record shape (raw-string
// challenge) still verify.
func verifyPKCE(verifier, challenge, method string) bool {
	if method == "plain" {
		return verifier == challenge
	}
	sum := sha256.Sum256([]byte(verifier))
	computed := base64.RawURLEncoding.EncodeToString(sum[:])
	return computed == challenge
}
