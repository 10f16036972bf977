// Package util holds small helpers shared across the module.
package util

import "math/rand"

// New returns a rand.Rand seeded with seed. Zero is coerced to 1 so an
// unset seed flag still produces a fixed, reproducible stream. All
// randomness in a match (shop rolls, random policies) flows through
// instances built here; the battle engine itself uses none.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	src := rand.NewSource(seed)
	return rand.New(src)
}
