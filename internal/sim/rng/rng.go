// Package rng provides the deterministic random streams used by the
// simulation. Streams are seeded from the world seed, the current tick
// and the identifiers of the entities involved, so every participant
// derives the same sequence without sharing generator state.
package rng

// Stream is a splitmix64 sequence. The zero value is usable but callers
// should construct streams through ForTick.
type Stream struct {
	state uint64
}

// ForTick derives a stream from the world seed, a tick number and any
// number of entity identifiers. The same inputs always yield the same
// stream on every participant.
func ForTick(seed int64, tick uint64, ids ...uint64) *Stream {
	v := mix64(uint64(seed) ^ tick*0x9e3779b97f4a7c15)
	for _, id := range ids {
		v = mix64(v ^ id*0xbf58476d1ce4e5b9)
	}
	return &Stream{state: v}
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (s *Stream) Uint64() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Intn returns a value in [0, n). n must be > 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn with non-positive n")
	}
	return int(s.Uint64() % uint64(n))
}

// Float64 returns a value in [0, 1).
func (s *Stream) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}

// Chance rolls once and reports true with probability p.
func (s *Stream) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.Float64() < p
}
