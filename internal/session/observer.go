package session

import (
	"time"

	"github.com/agbru/fibdev/internal/logging"
)

// Observer receives device lifecycle events. Implementations must be safe
// for concurrent use and must not call back into the device.
type Observer interface {
	// Acquired is called after a session is opened.
	Acquired()
	// Busy is called when Acquire is refused.
	Busy()
	// Released is called after a session is closed, with how long it was held.
	Released(held time.Duration)
	// Computed is called after every successful read.
	Computed(r Reading)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) Acquired()              {}
func (NopObserver) Busy()                  {}
func (NopObserver) Released(time.Duration) {}
func (NopObserver) Computed(Reading)       {}

// Observers fans every event out to each element in order.
type Observers []Observer

func (obs Observers) Acquired() {
	for _, o := range obs {
		o.Acquired()
	}
}

func (obs Observers) Busy() {
	for _, o := range obs {
		o.Busy()
	}
}

func (obs Observers) Released(held time.Duration) {
	for _, o := range obs {
		o.Released(held)
	}
}

func (obs Observers) Computed(r Reading) {
	for _, o := range obs {
		o.Computed(r)
	}
}

// LogObserver writes one debug entry per computed reading and a warning for
// every refused acquisition.
type LogObserver struct {
	Logger logging.Logger
}

func (LogObserver) Acquired()              {}
func (LogObserver) Released(time.Duration) {}

func (l LogObserver) Busy() {
	l.Logger.Warn("device is in use")
}

func (l LogObserver) Computed(r Reading) {
	l.Logger.Debug("computed",
		logging.Int64("index", r.Index),
		logging.Int("digits", len(r.Digits)),
		logging.Duration("elapsed", r.Elapsed))
}
