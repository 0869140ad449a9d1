package session

import (
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/fibonacci"
	"github.com/agbru/fibdev/internal/logging"
)

// Device is the shared resource sessions are opened on.
type Device struct {
	// lock is held for the whole lifetime of an open Session.
	lock   sync.Mutex
	inUse  atomic.Bool
	name   string
	max    int64
	engine fibonacci.Engine

	observer Observer
	logger   logging.Logger
}

// Option configures a Device during construction.
type Option func(*Device)

// WithMaxIndex sets the cursor ceiling. Negative values are treated as 0.
func WithMaxIndex(n int64) Option {
	return func(d *Device) {
		if n < 0 {
			n = 0
		}
		d.max = n
	}
}

// WithEngine sets the engine used by ReadCurrent.
func WithEngine(e fibonacci.Engine) Option {
	return func(d *Device) { d.engine = e }
}

// WithObserver registers lifecycle hooks.
func WithObserver(o Observer) Option {
	return func(d *Device) { d.observer = o }
}

// WithLogger sets the device logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Device) { d.logger = l }
}

// WithName sets the name used in log entries.
func WithName(name string) Option {
	return func(d *Device) { d.name = name }
}

// DefaultName is the device name used when none is configured.
const DefaultName = "fibonacci"

// NewDevice creates a closed device. Without options it uses the fast
// doubling engine and fibonacci.DefaultMaxIndex.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		name:     DefaultName,
		max:      fibonacci.DefaultMaxIndex,
		engine:   fibonacci.FastDoubling{},
		observer: NopObserver{},
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// MaxIndex returns the cursor ceiling.
func (d *Device) MaxIndex() int64 { return d.max }

// Engine returns the engine sessions compute with.
func (d *Device) Engine() fibonacci.Engine { return d.engine }

// InUse reports whether a session is currently open. The answer may be stale
// by the time the caller acts on it; use Acquire to actually claim the device.
func (d *Device) InUse() bool { return d.inUse.Load() }

// Acquire opens a session if none is open, or fails immediately with
// apperrors.ErrBusy. It never waits for the current holder.
func (d *Device) Acquire() (*Session, error) {
	if !d.lock.TryLock() {
		d.observer.Busy()
		return nil, apperrors.ErrBusy
	}
	d.inUse.Store(true)
	d.observer.Acquired()
	d.logger.Debug("session opened", logging.String("device", d.name))
	return &Session{dev: d, opened: time.Now()}, nil
}

// release is called exactly once per successful Acquire. The lock is
// dropped last so Released always precedes the next session's Acquired.
func (d *Device) release(held time.Duration) {
	d.observer.Released(held)
	d.logger.Debug("session closed", logging.String("device", d.name), logging.Duration("held", held))
	d.inUse.Store(false)
	d.lock.Unlock()
}
