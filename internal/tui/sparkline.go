package tui

// sparkBlocks are the eight heights of a sparkline cell, lowest first.
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// History keeps the most recent compute times, oldest first, dropping the
// oldest once full.
type History struct {
	samples []float64
	next    int
	full    bool
}

// NewHistory creates a history holding up to size samples (at least 1).
func NewHistory(size int) *History {
	return &History{samples: make([]float64, max(size, 1))}
}

// Push records v.
func (h *History) Push(v float64) {
	h.samples[h.next] = v
	h.next++
	if h.next == len(h.samples) {
		h.next, h.full = 0, true
	}
}

// Len returns the number of recorded samples.
func (h *History) Len() int {
	if h.full {
		return len(h.samples)
	}
	return h.next
}

// Values returns the samples in the order they were pushed.
func (h *History) Values() []float64 {
	if !h.full {
		return append([]float64(nil), h.samples[:h.next]...)
	}
	out := make([]float64, 0, len(h.samples))
	out = append(out, h.samples[h.next:]...)
	return append(out, h.samples[:h.next]...)
}

// RenderSparkline draws values in 0..100 as one block per value. Values
// outside the range are clamped.
func RenderSparkline(values []float64) string {
	runes := make([]rune, len(values))
	for i, v := range values {
		v = min(max(v, 0), 100)
		runes[i] = sparkBlocks[min(int(v/100*7), 7)]
	}
	return string(runes)
}

// Normalize scales values to 0..100 against their maximum. An all-zero
// input stays zero.
func Normalize(values []float64) []float64 {
	var peak float64
	for _, v := range values {
		peak = max(peak, v)
	}
	out := make([]float64, len(values))
	if peak == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / peak * 100
	}
	return out
}
