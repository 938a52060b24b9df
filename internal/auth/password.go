package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword returns the hex SHA-256 digest of the password. This is a
// simple credential check for a single-operator tool, not a hardened
// password scheme.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
