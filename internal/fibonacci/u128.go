package fibonacci

import (
	"math/big"
	"math/bits"
)

// Uint128 is an unsigned 128-bit integer composed of two 64-bit halves.
// Every arithmetic method wraps modulo 2^128; overflow is never reported.
// The zero value is 0 and values are immutable: methods return new values.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Uint128From64 widens a uint64.
func Uint128From64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Uint128FromBigInt returns b mod 2^128. b must be non-negative.
func Uint128FromBigInt(b *big.Int) Uint128 {
	mask := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(b, mask).Uint64()
	hi := new(big.Int).Rsh(b, 64)
	return Uint128{Hi: hi.And(hi, mask).Uint64(), Lo: lo}
}

// Add returns u+v mod 2^128.
func (u Uint128) Add(v Uint128) Uint128 {
	lo, carry := bits.Add64(u.Lo, v.Lo, 0)
	hi, _ := bits.Add64(u.Hi, v.Hi, carry)
	return Uint128{Hi: hi, Lo: lo}
}

// Sub returns u-v mod 2^128.
func (u Uint128) Sub(v Uint128) Uint128 {
	lo, borrow := bits.Sub64(u.Lo, v.Lo, 0)
	hi, _ := bits.Sub64(u.Hi, v.Hi, borrow)
	return Uint128{Hi: hi, Lo: lo}
}

// Mul returns u*v mod 2^128. The Hi*Hi term lies entirely above bit 128
// and is dropped, as are the upper halves of the cross products.
func (u Uint128) Mul(v Uint128) Uint128 {
	hi, lo := bits.Mul64(u.Lo, v.Lo)
	hi += u.Hi*v.Lo + u.Lo*v.Hi
	return Uint128{Hi: hi, Lo: lo}
}

// Lsh returns u<<n mod 2^128.
func (u Uint128) Lsh(n uint) Uint128 {
	switch {
	case n == 0:
		return u
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Hi: u.Lo << (n - 64)}
	default:
		return Uint128{Hi: u.Hi<<n | u.Lo>>(64-n), Lo: u.Lo << n}
	}
}

// QuoRem64 returns the quotient and remainder of u divided by d.
// It panics if d is zero.
func (u Uint128) QuoRem64(d uint64) (Uint128, uint64) {
	qHi, r := u.Hi/d, u.Hi%d
	qLo, r := bits.Div64(r, u.Lo, d)
	return Uint128{Hi: qHi, Lo: qLo}, r
}

// IsZero reports whether u == 0.
func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

// Cmp compares u and v and returns -1, 0 or +1.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.Hi < v.Hi:
		return -1
	case u.Hi > v.Hi:
		return 1
	case u.Lo < v.Lo:
		return -1
	case u.Lo > v.Lo:
		return 1
	}
	return 0
}

// BitLen returns the number of significant bits in u.
func (u Uint128) BitLen() int {
	if u.Hi != 0 {
		return 64 + bits.Len64(u.Hi)
	}
	return bits.Len64(u.Lo)
}

// BigInt converts u to a newly allocated big.Int.
func (u Uint128) BigInt() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}
