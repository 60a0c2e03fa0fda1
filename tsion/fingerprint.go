package tsion

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint returns the lowercase hex BLAKE3-256 digest of the
// encoded payload. Structural deduplication makes the payload — and
// therefore the digest — stable under repetition of substructures, so
// two trees fingerprint equal exactly when they encode equal.
func Fingerprint(v *Value) string {
	sum := blake3.Sum256([]byte(Encode(v)))
	return hex.EncodeToString(sum[:])
}
