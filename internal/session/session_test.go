package session

import (
	"bytes"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/fibonacci"
	"github.com/agbru/fibdev/internal/fibonacci/mocks"
	"github.com/agbru/fibdev/internal/logging"
)

func TestAcquire_Exclusivity(t *testing.T) {
	t.Parallel()
	dev := NewDevice()

	s1, err := dev.Acquire()
	require.NoError(t, err)
	assert.True(t, dev.InUse())

	s2, err := dev.Acquire()
	assert.ErrorIs(t, err, apperrors.ErrBusy)
	assert.Nil(t, s2)

	require.NoError(t, s1.Release())
	assert.False(t, dev.InUse())

	s3, err := dev.Acquire()
	require.NoError(t, err, "acquire after release must succeed")
	require.NoError(t, s3.Release())
}

func TestRelease_Twice(t *testing.T) {
	t.Parallel()
	dev := NewDevice()

	stale, err := dev.Acquire()
	require.NoError(t, err)
	require.NoError(t, stale.Release())

	holder, err := dev.Acquire()
	require.NoError(t, err)

	// A second release of the stale handle must not free the holder's lock.
	assert.ErrorIs(t, stale.Release(), apperrors.ErrSessionReleased)
	_, err = dev.Acquire()
	assert.ErrorIs(t, err, apperrors.ErrBusy)

	require.NoError(t, holder.Release())
}

func TestAcquire_ConcurrentCallersGetOneSession(t *testing.T) {
	t.Parallel()
	dev := NewDevice()

	const callers = 64
	var (
		winners atomic.Int32
		busy    atomic.Int32
		start   = make(chan struct{})
		mu      sync.Mutex
		held    []*Session
		g       errgroup.Group
	)
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			<-start
			s, err := dev.Acquire()
			if err != nil {
				busy.Add(1)
				return nil
			}
			winners.Add(1)
			mu.Lock()
			held = append(held, s)
			mu.Unlock()
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), winners.Load())
	assert.Equal(t, int32(callers-1), busy.Load())
	require.Len(t, held, 1)
	require.NoError(t, held[0].Release())
}

func TestSeek_Clamping(t *testing.T) {
	t.Parallel()
	const max = fibonacci.DefaultMaxIndex

	tests := []struct {
		name   string
		start  int64
		offset int64
		whence Whence
		want   int64
	}{
		{"absolute in range", 0, 10, Absolute, 10},
		{"absolute negative", 50, -5, Absolute, 0},
		{"absolute above max", 0, max + 50, Absolute, max},
		{"relative forward", 10, 5, RelativeToCursor, 15},
		{"relative back to zero", 10, -10, RelativeToCursor, 0},
		{"relative below zero", 10, -11, RelativeToCursor, 0},
		{"relative above max", 90, 20, RelativeToCursor, max},
		{"relative overflow saturates", 90, math.MaxInt64, RelativeToCursor, max},
		{"relative underflow saturates", 90, math.MinInt64, RelativeToCursor, 0},
		{"end anchored at max", 3, 10, RelativeToMax, max - 10},
		{"end zero", 3, 0, RelativeToMax, max},
		{"end negative offset", 3, -10, RelativeToMax, max},
		{"end past zero", 3, max + 1, RelativeToMax, 0},
		{"end min int", 3, math.MinInt64, RelativeToMax, max},
		{"unknown whence", 42, 7, Whence(9), 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := NewDevice().Acquire()
			require.NoError(t, err)
			defer s.Release()

			s.Seek(tt.start, Absolute)
			assert.Equal(t, tt.want, s.Seek(tt.offset, tt.whence))
			assert.Equal(t, tt.want, s.Cursor())
		})
	}
}

func TestSeek_RelativeToMaxIgnoresCursor(t *testing.T) {
	t.Parallel()
	s, err := NewDevice(WithMaxIndex(60)).Acquire()
	require.NoError(t, err)
	defer s.Release()

	for _, start := range []int64{0, 17, 60} {
		s.Seek(start, Absolute)
		assert.Equal(t, int64(50), s.Seek(10, RelativeToMax), "start=%d", start)
	}
}

func TestReadCurrent_EndToEnd(t *testing.T) {
	t.Parallel()
	dev := NewDevice()
	s, err := dev.Acquire()
	require.NoError(t, err)

	_, ok := s.LastComputeDuration()
	assert.False(t, ok, "no duration before the first read")

	assert.Equal(t, int64(10), s.Seek(10, Absolute))
	r, err := s.ReadCurrent()
	require.NoError(t, err)
	assert.Equal(t, "55", r.Digits)
	assert.Equal(t, int64(10), r.Index)

	last, ok := s.LastComputeDuration()
	assert.True(t, ok)
	assert.Equal(t, r.Elapsed, last)

	assert.Equal(t, int64(0), s.Seek(-10, RelativeToCursor))
	r, err = s.ReadCurrent()
	require.NoError(t, err)
	assert.Equal(t, "0", r.Digits)

	require.NoError(t, s.Release())
	_, err = s.ReadCurrent()
	assert.ErrorIs(t, err, apperrors.ErrSessionReleased)
}

func TestReadCurrent_Idempotent(t *testing.T) {
	t.Parallel()
	s, err := NewDevice().Acquire()
	require.NoError(t, err)
	defer s.Release()

	s.Seek(fibonacci.DefaultMaxIndex, Absolute)
	first, err := s.ReadCurrent()
	require.NoError(t, err)
	second, err := s.ReadCurrent()
	require.NoError(t, err)

	assert.Equal(t, "354224848179261915075", first.Digits)
	assert.Equal(t, first.Digits, second.Digits)
	assert.Equal(t, first.Index, second.Index)
}

func TestReadCurrent_BeyondSafeIndexIsDeterministic(t *testing.T) {
	t.Parallel()
	s, err := NewDevice(WithMaxIndex(400)).Acquire()
	require.NoError(t, err)
	defer s.Release()

	s.Seek(300, Absolute)
	a, err := s.ReadCurrent()
	require.NoError(t, err)
	b, err := s.ReadCurrent()
	require.NoError(t, err)
	assert.Equal(t, a.Digits, b.Digits)
	assert.LessOrEqual(t, len(a.Digits), 39, "wrapped value fits in 128 bits")
}

func TestReadCurrent_UsesEngine(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().Compute(uint64(7)).Return(fibonacci.Uint128From64(13)).Times(2)

	s, err := NewDevice(WithEngine(engine)).Acquire()
	require.NoError(t, err)
	defer s.Release()

	s.Seek(7, Absolute)
	for i := 0; i < 2; i++ {
		r, err := s.ReadCurrent()
		require.NoError(t, err)
		assert.Equal(t, "13", r.Digits)
	}
}

func TestAcceptWrite_IsNoop(t *testing.T) {
	t.Parallel()
	s, err := NewDevice().Acquire()
	require.NoError(t, err)
	defer s.Release()

	s.Seek(12, Absolute)
	s.AcceptWrite([]byte("99"))
	s.AcceptWrite(nil)
	assert.Equal(t, int64(12), s.Cursor())

	r, err := s.ReadCurrent()
	require.NoError(t, err)
	assert.Equal(t, "144", r.Digits)
}

func TestWithMaxIndex(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(0), NewDevice(WithMaxIndex(-3)).MaxIndex())
	assert.Equal(t, int64(fibonacci.DefaultMaxIndex), NewDevice().MaxIndex())
	assert.Equal(t, int64(fibonacci.MaxSafeIndex+1), NewDevice(WithMaxIndex(fibonacci.MaxSafeIndex+1)).MaxIndex(),
		"indices past the safe bound are allowed, not clamped")
}

// recordingObserver counts lifecycle events.
type recordingObserver struct {
	mu       sync.Mutex
	acquired int
	busy     int
	released []time.Duration
	readings []Reading
}

func (r *recordingObserver) Acquired() { r.mu.Lock(); r.acquired++; r.mu.Unlock() }
func (r *recordingObserver) Busy()     { r.mu.Lock(); r.busy++; r.mu.Unlock() }
func (r *recordingObserver) Released(d time.Duration) {
	r.mu.Lock()
	r.released = append(r.released, d)
	r.mu.Unlock()
}
func (r *recordingObserver) Computed(rd Reading) {
	r.mu.Lock()
	r.readings = append(r.readings, rd)
	r.mu.Unlock()
}

func TestObservers(t *testing.T) {
	t.Parallel()
	a, b := &recordingObserver{}, &recordingObserver{}
	dev := NewDevice(WithObserver(Observers{a, b}))

	s, err := dev.Acquire()
	require.NoError(t, err)
	_, err = dev.Acquire()
	require.ErrorIs(t, err, apperrors.ErrBusy)
	s.Seek(5, Absolute)
	_, err = s.ReadCurrent()
	require.NoError(t, err)
	require.NoError(t, s.Release())
	require.ErrorIs(t, s.Release(), apperrors.ErrSessionReleased)

	for _, o := range []*recordingObserver{a, b} {
		assert.Equal(t, 1, o.acquired)
		assert.Equal(t, 1, o.busy)
		assert.Len(t, o.released, 1, "double release must not emit a second event")
		require.Len(t, o.readings, 1)
		assert.Equal(t, "5", o.readings[0].Digits)
	}
}

// liveObserver tracks how many sessions the events report as open at once.
// Released is slow to widen any window between unlock and notification.
type liveObserver struct {
	live atomic.Int32
	peak atomic.Int32
}

func (o *liveObserver) Acquired() {
	n := o.live.Add(1)
	for {
		p := o.peak.Load()
		if n <= p || o.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (o *liveObserver) Busy() {}

func (o *liveObserver) Released(time.Duration) {
	time.Sleep(time.Microsecond)
	o.live.Add(-1)
}

func (o *liveObserver) Computed(Reading) {}

func TestObservers_ReleasedPrecedesNextAcquired(t *testing.T) {
	t.Parallel()
	obs := &liveObserver{}
	dev := NewDevice(WithObserver(obs))

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for j := 0; j < 500; j++ {
				s, err := dev.Acquire()
				if err != nil {
					continue
				}
				if err := s.Release(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), obs.peak.Load(), "observers saw overlapping sessions")
	assert.Equal(t, int32(0), obs.live.Load())
}

func TestLogObserver(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := logging.NewConfiguredLogger(&buf, "test", "debug", true)
	require.NoError(t, err)

	obs := LogObserver{Logger: logger}
	obs.Busy()
	obs.Computed(Reading{Index: 10, Digits: "55", Elapsed: time.Microsecond})

	assert.Contains(t, buf.String(), "device is in use")
	assert.Contains(t, buf.String(), `"index":10`)
	assert.Contains(t, buf.String(), `"digits":2`)
}

func TestWhence_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "set", Absolute.String())
	assert.Equal(t, "cur", RelativeToCursor.String())
	assert.Equal(t, "end", RelativeToMax.String())
	assert.Equal(t, "unknown", Whence(7).String())
}
