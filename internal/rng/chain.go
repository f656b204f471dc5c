package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync/atomic"
)

// Chain derives per-operation streams from a secret server seed.
// Draw i of operation k is SHA-256(seed || nonce(k) || hint || i), so anyone holding
// the revealed seed can replay every outcome, while callers cannot predict them in advance.
type Chain struct {
	seed  []byte
	nonce atomic.Uint64
}

// NewChain creates a chain from the server seed
func NewChain(serverSeed string) *Chain {
	return &Chain{seed: []byte(serverSeed)}
}

// Commitment is the published hash of the server seed
func (c *Chain) Commitment() string {
	sum := sha256.Sum256(c.seed)
	return hex.EncodeToString(sum[:])
}

// Stream implements Provider
func (c *Chain) Stream(hint string) Source {
	return c.StreamAt(c.nonce.Add(1), hint)
}

// StreamAt rebuilds the stream for a known nonce, used to verify past outcomes
func (c *Chain) StreamAt(nonce uint64, hint string) *ChainStream {
	return &ChainStream{seed: c.seed, nonce: nonce, hint: []byte(hint)}
}

// ChainStream is the Source for a single operation. Not safe for concurrent use.
type ChainStream struct {
	seed    []byte
	nonce   uint64
	hint    []byte
	counter uint64
}

// Nonce identifies the operation within the chain
func (s *ChainStream) Nonce() uint64 {
	return s.nonce
}

// Intn implements Source
func (s *ChainStream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	limit := maxUniform(uint64(n))
	for {
		v := s.next()
		if v < limit {
			return int(v % uint64(n))
		}
	}
}

func (s *ChainStream) next() uint64 {
	var buf [8]byte
	h := sha256.New()
	h.Write(s.seed)
	binary.BigEndian.PutUint64(buf[:], s.nonce)
	h.Write(buf[:])
	h.Write(s.hint)
	binary.BigEndian.PutUint64(buf[:], s.counter)
	h.Write(buf[:])
	s.counter++
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}
