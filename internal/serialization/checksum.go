package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeChecksum returns the SHA-256 of a native data section.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum returns an error wrapping ErrChecksumMismatch when the
// checksums differ.
func ValidateChecksum(computed, stored [32]byte) error {
	if computed != stored {
		return fmt.Errorf("%w: stored %s, computed %s",
			ErrChecksumMismatch, FormatChecksum(stored)[:16], FormatChecksum(computed)[:16])
	}
	return nil
}

// FormatChecksum renders a checksum as lowercase hex.
func FormatChecksum(sum [32]byte) string {
	return hex.EncodeToString(sum[:])
}
