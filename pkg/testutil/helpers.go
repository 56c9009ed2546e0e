package testutil

import (
	"crypto/sha256"
	"fmt"
)

// GetTestChecksum calculates the content hash dotsync records for content.
// This is used in tests to generate predictable hashes.
func GetTestChecksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("sha256:%x", hash)
}
