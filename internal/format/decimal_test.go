package format

import (
	"math"
	"math/big"
	"testing"

	"github.com/agbru/fibdev/internal/fibonacci"
)

func TestDecimal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   fibonacci.Uint128
		want string
	}{
		{"zero is a single digit", fibonacci.Uint128{}, "0"},
		{"one", fibonacci.Uint128From64(1), "1"},
		{"ten", fibonacci.Uint128From64(10), "10"},
		{"fifty-five", fibonacci.Uint128From64(55), "55"},
		{"max uint64", fibonacci.Uint128From64(math.MaxUint64), "18446744073709551615"},
		{"2^64", fibonacci.Uint128{Hi: 1}, "18446744073709551616"},
		{"max uint128", fibonacci.Uint128{Hi: math.MaxUint64, Lo: math.MaxUint64}, "340282366920938463463374607431768211455"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Decimal(tt.in); got != tt.want {
				t.Errorf("Decimal(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecimal_MatchesBigIntForSequence(t *testing.T) {
	t.Parallel()
	fd := fibonacci.FastDoubling{}
	prevLen := 0
	for n := uint64(0); n <= 400; n++ {
		v := fd.Compute(n)
		got := Decimal(v)
		if want := v.BigInt().String(); got != want {
			t.Fatalf("Decimal(F(%d)) = %s, want %s", n, got, want)
		}
		if n <= fibonacci.MaxSafeIndex {
			if len(got) < prevLen {
				t.Fatalf("digit count decreased at n=%d", n)
			}
			prevLen = len(got)
		}
	}
}

func TestAppendDecimal_PreservesPrefix(t *testing.T) {
	t.Parallel()
	got := AppendDecimal([]byte("F="), fibonacci.Uint128From64(144))
	if string(got) != "F=144" {
		t.Errorf("AppendDecimal = %q, want %q", got, "F=144")
	}
}

func FuzzDecimal(f *testing.F) {
	f.Add(uint64(0), uint64(0))
	f.Add(uint64(0), uint64(9))
	f.Add(^uint64(0), ^uint64(0))

	f.Fuzz(func(t *testing.T, hi, lo uint64) {
		v := fibonacci.Uint128{Hi: hi, Lo: lo}
		got := Decimal(v)
		want := new(big.Int).Lsh(new(big.Int).SetUint64(hi), 64)
		want.Or(want, new(big.Int).SetUint64(lo))
		if got != want.String() {
			t.Errorf("Decimal = %s, want %s", got, want)
		}
	})
}
