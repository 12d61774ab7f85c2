// Package auth hashes and verifies login secrets.
//
// Secrets are stored as unsalted SHA-256 hex digests and verified by digest
// equality. This matches the databases this tracker already has in the field;
// switching to a salted scheme would strand every existing user row, so the
// format is kept as-is. There is no rate limiting or lockout.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashSecret returns the hex-encoded SHA-256 digest of a secret.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether a secret hashes to the stored digest.
func Matches(storedHash, secret string) bool {
	computed := HashSecret(secret)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(computed)) == 1
}
