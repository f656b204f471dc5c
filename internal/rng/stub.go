package rng

import "sync"

// Sequence replays scripted draws, for tests.
// Each draw returns the next value reduced modulo n; once exhausted it returns Fallback mod n.
type Sequence struct {
	mu       sync.Mutex
	values   []int
	pos      int
	Fallback int
}

// NewSequence creates a scripted source
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

// Intn implements Source
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.Fallback
	if s.pos < len(s.values) {
		v = s.values[s.pos]
		s.pos++
	}
	if v < 0 {
		v = -v
	}
	return v % n
}

// Stream implements Provider
func (s *Sequence) Stream(string) Source {
	return s
}

// Remaining returns how many scripted values are left
func (s *Sequence) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.pos
}
