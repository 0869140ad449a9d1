package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
)

const (
	// ProgressRefreshRate is the spinner frame interval.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 30
)

// Spinner abstracts the terminal spinner so sweeps can be tested without a
// terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Lock(); rs.s.Suffix = suffix; rs.s.Unlock() }

var newSpinner = func(w io.Writer) Spinner {
	return &realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, spinner.WithWriter(w))}
}

// ProgressState tracks the fraction of work done by each sweep job and
// reports their average.
type ProgressState struct {
	progresses []float64
}

// NewProgressState tracks n jobs, all at 0.
func NewProgressState(n int) *ProgressState {
	return &ProgressState{progresses: make([]float64, n)}
}

// Update records value (0 to 1) for job index. Out-of-range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress, 0 when nothing is tracked.
func (ps *ProgressState) CalculateAverage() float64 {
	if len(ps.progresses) == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(len(ps.progresses))
}

// FormatProgress renders the spinner suffix for a progress fraction.
func FormatProgress(label string, progress float64) string {
	return fmt.Sprintf(" %s %s %5.1f%%", label, progressBar(progress, ProgressBarWidth), progress*100)
}

func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	count := int(progress * float64(length))
	var b strings.Builder
	b.Grow(length * 3)
	for i := range length {
		if i < count {
			b.WriteRune('█')
		} else {
			b.WriteRune('░')
		}
	}
	return b.String()
}
