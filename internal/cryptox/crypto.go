// Package cryptox holds the small amount of crypto plumbing the sync
// protocol needs: hashing the shared backend password and comparing digests
// without leaking timing.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// PasswordDigest returns the lowercase hex SHA-256 digest of password.
// Clients send this digest on the wire instead of the plaintext password,
// and the server stores only the digest of its configured password.
func PasswordDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// DigestEqual compares two digest strings in constant time.
func DigestEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
