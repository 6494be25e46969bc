// Package hash wraps xxHash64 for identifiers, section checksums and
// reference digests.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Digest computes the xxHash64 of data.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Checksum32 returns the low 32 bits of the xxHash64 of data, the checksum
// width of the section header.
func Checksum32(data []byte) uint32 {
	return uint32(xxhash.Sum64(data)) //nolint:gosec // G115: truncation intended
}
