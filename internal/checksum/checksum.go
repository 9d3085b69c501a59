// Package checksum fingerprints content for change detection.
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

// Short returns the first n characters of sum, or all of it when shorter.
func Short(sum string, n int) string {
	if len(sum) <= n {
		return sum
	}
	return sum[:n]
}
