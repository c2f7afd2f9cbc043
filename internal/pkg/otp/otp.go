package otp

import (
	"math/rand/v2"
	"sync"
)

const (
	// MinCode is the smallest code Generate returns.
	MinCode = 100000
	// MaxCode is the largest code Generate returns.
	MaxCode = 999999
)

// Generator produces passcodes.
type Generator interface {
	Generate() int
}

// Random draws codes from a shared pseudo-random source. Safe for concurrent use.
type Random struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandom returns a Random seeded by the runtime.
func NewRandom() *Random {
	return &Random{}
}

// NewRandomWithSource returns a Random reading from src. Used for
// reproducible sequences in tests.
func NewRandomWithSource(src rand.Source) *Random {
	return &Random{rnd: rand.New(src)}
}

// Generate returns a code in [MinCode, MaxCode].
func (r *Random) Generate() int {
	if r.rnd == nil {
		return MinCode + rand.IntN(MaxCode-MinCode+1)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return MinCode + r.rnd.IntN(MaxCode-MinCode+1)
}
