//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

package fibonacci

import (
	"math/bits"
	"time"
)

// Engine computes the n-th Fibonacci number over the 128-bit wrapping
// integer domain. Implementations are pure and safe for concurrent use.
type Engine interface {
	// Name returns a human-readable description of the algorithm.
	Name() string
	// Compute returns F(n) mod 2^128. It never fails.
	Compute(n uint64) Uint128
}

// FastDoubling evaluates F(n) with the doubling identities
//
//	F(2k)   = F(k) * (2*F(k+1) - F(k))
//	F(2k+1) = F(k)² + F(k+1)²
//
// walking the bits of n from the most significant one down, for a total of
// bits.Len64(n) steps. Intermediate products wrap silently, so the result is
// exact only while F(n) fits in 128 bits (see MaxSafeIndex); beyond that it
// is the deterministic value F(n) mod 2^128.
type FastDoubling struct{}

// Name returns the algorithm label.
func (FastDoubling) Name() string {
	return "Fast Doubling (O(log n), 128-bit)"
}

// Compute returns F(n) mod 2^128.
func (FastDoubling) Compute(n uint64) Uint128 {
	a := Uint128{}        // F(k)
	b := Uint128From64(1) // F(k+1)
	if n == 0 {
		return a
	}

	for j := bits.Len64(n) - 1; j >= 0; j-- {
		c := a.Mul(b.Lsh(1).Sub(a)) // F(2k)
		d := a.Mul(a).Add(b.Mul(b)) // F(2k+1)

		if (n>>uint(j))&1 == 1 {
			a, b = d, c.Add(d)
		} else {
			a, b = c, d
		}
	}
	return a
}

// Iterative evaluates F(n) with the linear recurrence. It is the baseline the
// doubling engine is timed against.
type Iterative struct{}

// Name returns the algorithm label.
func (Iterative) Name() string {
	return "Iterative (O(n), 128-bit)"
}

// Compute returns F(n) mod 2^128.
func (Iterative) Compute(n uint64) Uint128 {
	a, b := Uint128{}, Uint128From64(1)
	for i := uint64(0); i < n; i++ {
		a, b = b, a.Add(b)
	}
	return a
}

// Computation is the outcome of one timed evaluation.
type Computation struct {
	// Index is the Fibonacci position that was evaluated.
	Index uint64
	// Value is F(Index) mod 2^128.
	Value Uint128
	// Elapsed is the wall-clock time spent inside Engine.Compute, measured
	// with the monotonic clock.
	Elapsed time.Duration
}

// Measure runs e.Compute(n) and reports how long it took. The duration is
// returned alongside the value and never influences it.
func Measure(e Engine, n uint64) Computation {
	start := time.Now()
	v := e.Compute(n)
	return Computation{Index: n, Value: v, Elapsed: time.Since(start)}
}
