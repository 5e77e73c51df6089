// Package rng implements the RNG port over math/rand. Each stream gets its
// own source, so nothing a caller does to one stream can perturb another.
package rng

import (
	"math/rand"

	"amaa/internal"
)

// Adapter implements ports.RNG.
type Adapter struct{}

// New creates the adapter.
func New() *Adapter {
	return &Adapter{}
}

// Stream returns an isolated generator seeded with seed. The name labels the
// stream in debug logs; it does not feed the seed, which callers derive
// themselves from canonical content hashes.
func (a *Adapter) Stream(name string, seed int64) *rand.Rand {
	internal.DefaultLogger.Debug("[RNG] stream %s seeded with %d", name, seed)
	return rand.New(rand.NewSource(seed))
}
