package ports

import (
	"math/rand"
)

// RNG provides seeded random number generation for deterministic operations
type RNG interface {
	// Stream creates a deterministic generator for a named operation. Streams
	// are isolated from each other: the same (name, seed) pair yields the
	// identical value sequence regardless of prior calls or their order.
	Stream(name string, seed int64) *rand.Rand
}
