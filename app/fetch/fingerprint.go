package fetch

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint identifies a feed body; equal bodies give equal fingerprints.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:16])
}
