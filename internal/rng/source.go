package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Source yields independent uniform draws
type Source interface {
	// Intn returns a uniform value in [0, n). It returns 0 when n <= 0.
	Intn(n int) int
}

// Provider hands out one Source per economy operation.
// The hint is caller supplied entropy mixed into the stream.
type Provider interface {
	Stream(hint string) Source
}

// Percent reports whether a percentage roll in [0,100) lands below rate
func Percent(src Source, rate int) bool {
	if rate <= 0 {
		return false
	}
	if rate >= 100 {
		return true
	}
	return src.Intn(100) < rate
}

// Between returns a uniform value in [lo, hi]
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Seeded is a PCG backed source, safe for concurrent use.
// Intended for development and simulation; production uses Chain.
type Seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded creates a reproducible source
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn implements Source
func (s *Seeded) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// Stream implements Provider; the hint is ignored so runs stay reproducible
func (s *Seeded) Stream(string) Source {
	return s
}

// Crypto draws from crypto/rand
type Crypto struct{}

// Intn implements Source
func (Crypto) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	limit := maxUniform(uint64(n))
	for {
		if _, err := crand.Read(buf[:]); err != nil {
			panic("rng: crypto source unavailable: " + err.Error())
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v < limit {
			return int(v % uint64(n))
		}
	}
}

// Stream implements Provider
func (c Crypto) Stream(string) Source {
	return c
}

// maxUniform returns the largest multiple of n that fits in a uint64, for rejection sampling
func maxUniform(n uint64) uint64 {
	return (^uint64(0) / n) * n
}
