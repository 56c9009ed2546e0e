package hashutil

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/arthur-debert/dotsync/pkg/types"
)

// Prefix marks the digest algorithm in every stored hash
const Prefix = "sha256:"

// CalculateFileChecksum calculates the SHA256 checksum of a file
func CalculateFileChecksum(fsys types.FS, path string) (string, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%x", Prefix, hash.Sum(nil)), nil
}

// ChecksumBytes calculates the SHA256 checksum of in-memory content
func ChecksumBytes(data []byte) string {
	return fmt.Sprintf("%s%x", Prefix, sha256.Sum256(data))
}
