package dice

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	mrand "math/rand/v2"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, n) for any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a cryptographically secure random float in [0, 1).
func (c *cryptoSource) Float64() float64 {
	return float64(c.Intn(1<<53)) / (1 << 53)
}

// seededSource implements Source with a PCG generator.
type seededSource struct {
	rng *mrand.Rand
}

// NewSeededSource returns a Source whose sequence is fully determined by seed.
//
// Postcondition: two sources built from the same seed produce identical sequences.
func NewSeededSource(seed uint64) Source {
	// Non-cryptographic PRNG is intentional: playthrough draws only need uniformity.
	// #nosec G404
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewEntropySource returns a seeded Source whose seed is taken once from crypto/rand.
// Playthroughs are therefore not reproducible.
func NewEntropySource() Source {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return NewSeededSource(binary.LittleEndian.Uint64(buf[:]))
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return s.rng.IntN(n)
}

// Float64 returns a pseudo-random float in [0, 1).
func (s *seededSource) Float64() float64 {
	return s.rng.Float64()
}
