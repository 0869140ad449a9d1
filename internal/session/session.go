package session

import (
	"math"
	"sync"
	"time"

	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/fibonacci"
	"github.com/agbru/fibdev/internal/format"
)

// Whence selects how Seek interprets its offset.
type Whence int

const (
	// Absolute sets the cursor to offset.
	Absolute Whence = iota
	// RelativeToCursor moves the cursor by offset.
	RelativeToCursor
	// RelativeToMax sets the cursor to MaxIndex - offset. It is anchored at
	// the configured maximum, not at the cursor.
	RelativeToMax
)

// String returns the lseek-style name of w.
func (w Whence) String() string {
	switch w {
	case Absolute:
		return "set"
	case RelativeToCursor:
		return "cur"
	case RelativeToMax:
		return "end"
	}
	return "unknown"
}

// Reading is the result of one ReadCurrent call.
type Reading struct {
	// Index is the cursor the value was computed for.
	Index int64
	// Digits is the decimal representation of F(Index) mod 2^128.
	Digits string
	// Elapsed is the time the engine spent computing the value.
	Elapsed time.Duration
}

// Session is an open handle on a Device. Its methods are serialized with
// respect to each other, so a handle may be shared between goroutines.
type Session struct {
	dev    *Device
	opened time.Time

	mu       sync.Mutex
	cursor   int64
	last     time.Duration
	hasLast  bool
	released bool
}

// Release closes the session and frees the device for the next Acquire.
// Only the first call has an effect; later calls return
// apperrors.ErrSessionReleased and leave the device untouched, so a stale
// handle can never unlock a session opened by someone else.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return apperrors.ErrSessionReleased
	}
	s.released = true
	s.dev.release(time.Since(s.opened))
	return nil
}

// Seek moves the cursor and returns its new value. Targets outside
// [0, MaxIndex] saturate at the nearest bound; Seek never fails. An unknown
// whence selects 0 as the target.
func (s *Session) Seek(offset int64, whence Whence) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	max := s.dev.max
	var target int64
	switch whence {
	case Absolute:
		target = offset
	case RelativeToCursor:
		target = saturatingAdd(s.cursor, offset)
	case RelativeToMax:
		target = saturatingSub(max, offset)
	}

	s.cursor = clamp(target, 0, max)
	return s.cursor
}

// ReadCurrent computes F(cursor), records the compute duration and returns
// the digits. The cursor does not move, so repeated reads return identical
// digits.
func (s *Session) ReadCurrent() (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return Reading{}, apperrors.ErrSessionReleased
	}

	c := fibonacci.Measure(s.dev.engine, uint64(s.cursor))
	r := Reading{
		Index:   s.cursor,
		Digits:  format.Decimal(c.Value),
		Elapsed: c.Elapsed,
	}
	s.last, s.hasLast = c.Elapsed, true
	s.dev.observer.Computed(r)
	return r, nil
}

// AcceptWrite accepts and discards p. Writes carry no meaning for the
// device; the method exists so the file interface has a write operation.
func (s *Session) AcceptWrite(p []byte) {}

// Cursor returns the current cursor.
func (s *Session) Cursor() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// LastComputeDuration returns the engine time of the most recent read, and
// false if nothing has been read in this session yet.
func (s *Session) LastComputeDuration() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// Device returns the device the session was opened on.
func (s *Session) Device() *Device { return s.dev }

func clamp(v, lo, hi int64) int64 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

func saturatingAdd(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

func saturatingSub(a, b int64) int64 {
	if b == math.MinInt64 {
		if a >= 0 {
			return math.MaxInt64
		}
		return a - b
	}
	return saturatingAdd(a, -b)
}
