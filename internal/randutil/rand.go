// Package randutil derives reproducible random sources.
package randutil

import (
	rand "math/rand/v2"
	"time"
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

// Stream returns the idx-th independent source derived from base. Streams
// for distinct indexes do not overlap in practice, and the same (base, idx)
// pair always yields the same sequence.
func Stream(base, idx uint64) *rand.Rand {
	hi := mix(base ^ mix(idx+1))
	lo := mix(hi + goldenRatio64*(idx+1))
	return rand.New(rand.NewPCG(hi, lo))
}

// Seed returns *seed when one was given, including zero, otherwise a value
// taken from the wall clock. It is used at the program boundary only.
func Seed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
