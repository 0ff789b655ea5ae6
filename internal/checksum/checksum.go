// Package checksum fingerprints note files so sync can skip unchanged ones.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Equal reports whether data hashes to the stored digest. An empty digest never matches.
func Equal(data []byte, digest string) bool {
	return digest != "" && Sum(data) == digest
}
