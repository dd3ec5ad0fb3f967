package tdfbundle

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the hex encoded BLAKE2b-256 hash of a bundle. Packing
// is deterministic, so equal font sets always produce equal digests and
// the digest can serve as a cache key.
func Digest(bundle []byte) string {
	sum := blake2b.Sum256(bundle)
	return hex.EncodeToString(sum[:])
}
