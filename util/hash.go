package util

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/zeebo/xxh3"
)

// GetHash calculates the SHA-256 hash of data from an io.Reader.
// It returns the hash as a hexadecimal string.
func GetHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// HashBytes returns the SHA-256 hash of data as a hexadecimal string.
// Used for content identifiers in content-addressed backends.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}

// Checksum returns the xxh3-128 checksum of data as a hexadecimal string.
// Checkpoint files carry this checksum over their canonical state
// serialization; recovery recomputes it before trusting a snapshot.
func Checksum(data []byte) string {
	return fmt.Sprintf("%x", xxh3.Hash128(data).Bytes())
}
