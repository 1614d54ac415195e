package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by rand/v2
// so that all call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns the seed for the stream at index within a run seeded with seed.
// Streams are independent of each other, so work can be split across goroutines
// without changing what any one stream produces.
func Derive(seed int64, index int) int64 {
	return int64(mix(uint64(seed) ^ mix(uint64(index)+goldenRatio64)))
}

// Seed returns a non-zero seed read from crypto/rand.
func Seed() int64 {
	var b [8]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			panic("randutil: reading random seed: " + err.Error())
		}
		if s := int64(binary.LittleEndian.Uint64(b[:]) >> 1); s != 0 {
			return s
		}
	}
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
