package fibonacci

import (
	"fmt"
	"math"
	"math/big"
	"testing"
)

// bigFib computes F(n) exactly with the linear recurrence.
func bigFib(n uint64) *big.Int {
	a, b := big.NewInt(0), big.NewInt(1)
	for i := uint64(0); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return a
}

func allEngines() []Engine {
	return []Engine{FastDoubling{}, Iterative{}}
}

func TestEngines_TextbookSequence(t *testing.T) {
	t.Parallel()
	want := []uint64{0, 1, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	for _, e := range allEngines() {
		e := e
		t.Run(e.Name(), func(t *testing.T) {
			t.Parallel()
			for n, w := range want {
				if got := e.Compute(uint64(n)); got != Uint128From64(w) {
					t.Errorf("Compute(%d) = %v, want %d", n, got.BigInt(), w)
				}
			}
		})
	}
}

func TestEngines_KnownValues(t *testing.T) {
	t.Parallel()
	cases := []struct {
		n    uint64
		want string
	}{
		{50, "12586269025"},
		{92, "7540113804746346429"},
		{93, "12200160415121876738"},
		{94, "19740274219868223167"}, // first value above 2^64
		{100, "354224848179261915075"},
		{150, "9969216677189303386214405760200"},
		{MaxSafeIndex, "332825110087067562321196029789634457848"},
	}

	for _, e := range allEngines() {
		for _, tc := range cases {
			e, tc := e, tc
			t.Run(fmt.Sprintf("%s/N=%d", e.Name(), tc.n), func(t *testing.T) {
				t.Parallel()
				if got := e.Compute(tc.n).BigInt().String(); got != tc.want {
					t.Errorf("Compute(%d) = %s, want %s", tc.n, got, tc.want)
				}
			})
		}
	}
}

func TestFastDoubling_MatchesIterative(t *testing.T) {
	t.Parallel()
	fd, it := FastDoubling{}, Iterative{}
	for n := uint64(0); n <= 1000; n++ {
		if a, b := fd.Compute(n), it.Compute(n); a != b {
			t.Fatalf("n=%d: fast doubling %v != iterative %v", n, a.BigInt(), b.BigInt())
		}
	}
}

func TestMaxSafeIndex_IsOverflowBoundary(t *testing.T) {
	t.Parallel()
	limit := new(big.Int).Lsh(big.NewInt(1), 128)

	if bigFib(MaxSafeIndex).Cmp(limit) >= 0 {
		t.Fatalf("F(%d) does not fit in 128 bits", MaxSafeIndex)
	}
	if bigFib(MaxSafeIndex+1).Cmp(limit) < 0 {
		t.Fatalf("F(%d) still fits in 128 bits; MaxSafeIndex is too low", MaxSafeIndex+1)
	}

	fd := FastDoubling{}
	for n := uint64(0); n <= MaxSafeIndex; n++ {
		if got, want := fd.Compute(n).BigInt(), bigFib(n); got.Cmp(want) != 0 {
			t.Fatalf("Compute(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestFastDoubling_WrapsDeterministically(t *testing.T) {
	t.Parallel()
	fd := FastDoubling{}

	for _, n := range []uint64{MaxSafeIndex + 1, 300, 1 << 20, 1<<63 + 12345} {
		first, second := fd.Compute(n), fd.Compute(n)
		if first != second {
			t.Errorf("Compute(%d) not deterministic: %v vs %v", n, first.BigInt(), second.BigInt())
		}
	}

	// Beyond the safe bound the value is wrapped, not exact.
	n := uint64(MaxSafeIndex + 1)
	exact := bigFib(n)
	got := fd.Compute(n).BigInt()
	if got.Cmp(exact) == 0 {
		t.Fatalf("Compute(%d) unexpectedly exact", n)
	}
	if want := new(big.Int).Mod(exact, modulus128); got.Cmp(want) != 0 {
		t.Errorf("Compute(%d) = %s, want F(n) mod 2^128 = %s", n, got, want)
	}
}

func TestMeasure(t *testing.T) {
	t.Parallel()
	c := Measure(FastDoubling{}, 10)
	if c.Index != 10 {
		t.Errorf("Index = %d, want 10", c.Index)
	}
	if c.Value != Uint128From64(55) {
		t.Errorf("Value = %v, want 55", c.Value.BigInt())
	}
	if c.Elapsed < 0 {
		t.Errorf("Elapsed = %v, want >= 0", c.Elapsed)
	}
}

// TestDigitGrowth checks that F(n) gains about log10(φ) digits per index:
// the digit count is non-decreasing and within one of
// floor(n*log10(φ) - log10(√5)) + 1.
func TestDigitGrowth(t *testing.T) {
	t.Parallel()
	log10Phi := math.Log10(math.Phi)
	log10Sqrt5 := math.Log10(math.Sqrt(5))

	prev := 0
	for n := uint64(2); n <= MaxSafeIndex; n++ {
		actual := len(bigFib(n).String())
		if actual < prev {
			t.Fatalf("digit count decreased at n=%d", n)
		}
		prev = actual

		est := int(float64(n)*log10Phi-log10Sqrt5) + 1
		if diff := actual - est; diff < -1 || diff > 1 {
			t.Errorf("n=%d: estimated %d digits, actual %d", n, est, actual)
		}
	}
}

func BenchmarkEngines(b *testing.B) {
	for _, e := range allEngines() {
		for _, n := range []uint64{10, 100, MaxSafeIndex} {
			b.Run(fmt.Sprintf("%s/N=%d", e.Name(), n), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					_ = e.Compute(n)
				}
			})
		}
	}
}
