package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// ResetTokenSize is the number of random bytes in a reset token (256 bits).
const ResetTokenSize = 32

// NewResetToken returns a URL-safe random token and its fingerprint. Only the
// fingerprint is meant to be stored.
func NewResetToken() (raw, fingerprint string, err error) {
	buf := make([]byte, ResetTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("token: generate reset token: %w", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	return raw, Fingerprint(raw), nil
}

// Fingerprint returns the base64url SHA-256 digest of a token.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
