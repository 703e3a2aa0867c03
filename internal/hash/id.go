package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Sum64 computes the xxHash64 of the given bytes.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest is a streaming xxHash64 state, used to fingerprint an EDS from its
// canonical serialization without materializing the whole text.
type Digest = xxhash.Digest

// NewDigest returns a fresh streaming hash state.
func NewDigest() *Digest {
	return xxhash.New()
}
