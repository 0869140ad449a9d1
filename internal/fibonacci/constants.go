package fibonacci

// ─────────────────────────────────────────────────────────────────────────────
// Index Bounds
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultMaxIndex is the default cursor ceiling exposed to sessions.
	DefaultMaxIndex = 100

	// MaxSafeIndex is the largest n for which F(n) < 2^128, i.e. the last
	// index whose 128-bit result is exact:
	//
	//	F(186) = 332825110087067562321196029789634457848
	//	2^128  = 340282366920938463463374607431768211456
	//	F(187) = 538522340430300790495419781092981030533
	//
	// Because every step of the doubling recurrence is a ring operation, the
	// engine output is F(n) mod 2^128 for any n; wrapped intermediates do not
	// corrupt the result while F(n) itself fits.
	MaxSafeIndex = 186
)
