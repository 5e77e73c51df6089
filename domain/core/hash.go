package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic content hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// partSeparator keeps adjacent parts from colliding: ("ab","c") and ("a","bc")
// hash to different seeds.
const partSeparator = "\x1f"

// SeedFromParts derives a deterministic int64 seed from an ordered tuple of
// string parts. The parts are joined with a non-printing separator, hashed
// with sha256, and the low 63 bits of the digest are taken. Identical parts
// always produce the identical seed; the function has no other inputs.
func SeedFromParts(parts ...string) int64 {
	sum := sha256.Sum256([]byte(strings.Join(parts, partSeparator)))
	return int64(binary.BigEndian.Uint64(sum[:8]) & (1<<63 - 1))
}

// CanonicalSet renders an unordered name set as a single stable string for
// seed derivation: sorted, separator-joined. The input slice is not modified.
func CanonicalSet(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// ComputeTableHash fingerprints a header set plus row count, used to detect
// whether a session's table changed between requests.
func ComputeTableHash(headers []string, rowCount int) Hash {
	var data strings.Builder
	for _, h := range headers {
		data.WriteString(h)
		data.WriteString(partSeparator)
	}
	data.WriteString(strings.Repeat("#", rowCount%64+1))
	return NewHash([]byte(data.String()))
}
