package fibonacci

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestFastDoubling_EqualsExactModulo_PropertyBased checks that for any n the
// fixed-width engine returns exactly F(n) mod 2^128. This is the guarantee
// that survives past MaxSafeIndex: the doubling steps are ring operations,
// so wrapping commutes with the recurrence.
func TestFastDoubling_EqualsExactModulo_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("FastDoubling(n) == F(n) mod 2^128", prop.ForAll(
		func(n uint64) bool {
			return Verify(FastDoubling{}, n)
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

// TestRecurrence_PropertyBased verifies F(n) = F(n-1) + F(n-2) in the
// wrapped domain, for indices both below and far beyond the safe bound.
func TestRecurrence_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	fd := FastDoubling{}

	properties.Property("F(n) = F(n-1) + F(n-2) mod 2^128", prop.ForAll(
		func(n uint64) bool {
			return fd.Compute(n) == fd.Compute(n-1).Add(fd.Compute(n-2))
		},
		gen.UInt64Range(2, 1<<62),
	))

	properties.TestingRun(t)
}

// TestUint128Arithmetic_PropertyBased cross-checks wrapping arithmetic
// against math/big reduced modulo 2^128.
func TestUint128Arithmetic_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	reduce := func(b *big.Int) *big.Int { return b.Mod(b, modulus128) }

	properties.Property("Add/Sub/Mul match big.Int mod 2^128", prop.ForAll(
		func(ah, al, bh, bl uint64) bool {
			a, b := Uint128{Hi: ah, Lo: al}, Uint128{Hi: bh, Lo: bl}
			ab, bb := a.BigInt(), b.BigInt()

			sum := reduce(new(big.Int).Add(ab, bb))
			diff := reduce(new(big.Int).Sub(ab, bb))
			prod := reduce(new(big.Int).Mul(ab, bb))

			return a.Add(b).BigInt().Cmp(sum) == 0 &&
				a.Sub(b).BigInt().Cmp(diff) == 0 &&
				a.Mul(b).BigInt().Cmp(prod) == 0
		},
		gen.UInt64(), gen.UInt64(), gen.UInt64(), gen.UInt64(),
	))

	properties.TestingRun(t)
}
