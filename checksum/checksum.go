// Package checksum wraps the blake2s digest the shell uses to fingerprint
// wallet data and settings documents.
package checksum

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2s"
)

// B2SSum returns the lowercase hex blake2s-256 digest of s.
// The second return value is false when s is empty.
func B2SSum(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	return B2SSumBytes([]byte(s)), true
}

// B2SSumBytes returns the lowercase hex blake2s-256 digest of b.
func B2SSumBytes(b []byte) string {
	sum := blake2s.Sum256(b)
	return hex.EncodeToString(sum[:])
}
