package random

import (
	"crypto/rand"
	mrand "math/rand/v2"
	"sync"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// ChaChaRandom draws from a ChaCha8 stream keyed from crypto/rand, so draws
// cannot be predicted from earlier ones
type ChaChaRandom struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// New creates a ChaChaRandom with a fresh random key
func New() *ChaChaRandom {
	var seed [32]byte
	_, _ = rand.Read(seed[:])
	return &ChaChaRandom{rng: mrand.New(mrand.NewChaCha8(seed))}
}

// Intn returns a random int in [0, n), or 0 if n <= 0
func (r *ChaChaRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
