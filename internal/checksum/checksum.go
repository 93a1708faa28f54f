// Package checksum fingerprints data files and decklists.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Lines fingerprints an ordered list of lines, e.g. a decklist.
func Lines(lines []string) string {
	return Sum([]byte(strings.Join(lines, "\n")))
}
