// Package format renders engine results and timings as text.
package format

import "github.com/agbru/fibdev/internal/fibonacci"

// MaxDigits is the length of 2^128-1 in base 10, the longest output of
// Decimal.
const MaxDigits = 39

// Decimal returns the canonical base-10 representation of v: most
// significant digit first, no leading zeros, and "0" for zero.
func Decimal(v fibonacci.Uint128) string {
	return string(AppendDecimal(nil, v))
}

// AppendDecimal appends the digits of v to dst and returns the extended
// slice.
func AppendDecimal(dst []byte, v fibonacci.Uint128) []byte {
	if v.IsZero() {
		return append(dst, '0')
	}

	// Digits come out least significant first.
	var buf [MaxDigits]byte
	n := 0
	for !v.IsZero() {
		var r uint64
		v, r = v.QuoRem64(10)
		buf[n] = byte('0' + r)
		n++
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return append(dst, buf[:n]...)
}
