package fibonacci

import (
	"errors"
	"math/big"
	"math/bits"
)

// ErrInvalidModulus is returned by ExactMod for a nil or non-positive modulus.
var ErrInvalidModulus = errors.New("modulus must be positive")

// modulus128 is 2^128, the modulus of the Uint128 domain.
var modulus128 = new(big.Int).Lsh(big.NewInt(1), 128)

// ExactMod computes F(n) mod m with arbitrary-precision intermediates reduced
// at every step, so it is exact for any n. It serves as the reference the
// fixed-width engines are checked against.
func ExactMod(n uint64, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}

	fk, fk1 := big.NewInt(0), big.NewInt(1)
	c, d, sq := new(big.Int), new(big.Int), new(big.Int)

	for j := bits.Len64(n) - 1; j >= 0; j-- {
		// c = F(k) * (2F(k+1) - F(k)); Mod keeps it non-negative.
		c.Lsh(fk1, 1).Sub(c, fk).Mod(c, m).Mul(c, fk).Mod(c, m)
		// d = F(k)² + F(k+1)²
		d.Mul(fk, fk)
		d.Add(d, sq.Mul(fk1, fk1)).Mod(d, m)

		if (n>>uint(j))&1 == 1 {
			fk.Set(d)
			fk1.Add(c, d).Mod(fk1, m)
		} else {
			fk.Set(c)
			fk1.Set(d)
		}
	}
	return fk.Mod(fk, m), nil
}

// Verify reports whether e.Compute(n) equals F(n) mod 2^128.
func Verify(e Engine, n uint64) bool {
	want, _ := ExactMod(n, modulus128)
	return e.Compute(n) == Uint128FromBigInt(want)
}
