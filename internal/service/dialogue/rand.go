package dialogue

import "math/rand/v2"

// Rand returns a float in [0, 1). It is the engine's only source of randomness.
type Rand func() float64

func DefaultRand() float64 {
	return rand.Float64()
}

// pick selects one item using r; out of range values are clamped.
func pick(items []string, r Rand) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	if r == nil {
		r = DefaultRand
	}

	idx := int(r() * float64(len(items)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(items) {
		idx = len(items) - 1
	}
	return items[idx], true
}
