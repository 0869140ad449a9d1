package tui

import (
	"slices"
	"testing"
)

func TestHistory(t *testing.T) {
	t.Parallel()
	h := NewHistory(3)
	if h.Len() != 0 || len(h.Values()) != 0 {
		t.Fatal("new history should be empty")
	}
	h.Push(1)
	h.Push(2)
	if got := h.Values(); !slices.Equal(got, []float64{1, 2}) {
		t.Errorf("Values = %v", got)
	}
	h.Push(3)
	h.Push(4)
	if got := h.Values(); !slices.Equal(got, []float64{2, 3, 4}) {
		t.Errorf("Values after wrap = %v", got)
	}
	if h.Len() != 3 {
		t.Errorf("Len = %d", h.Len())
	}
}

func TestNewHistory_MinimumSize(t *testing.T) {
	t.Parallel()
	h := NewHistory(0)
	h.Push(5)
	h.Push(6)
	if got := h.Values(); !slices.Equal(got, []float64{6}) {
		t.Errorf("Values = %v", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	t.Parallel()
	if got := RenderSparkline([]float64{0, 50, 100, 150, -5}); got != "▁▄██▁" {
		t.Errorf("RenderSparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty input should render empty")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	if got := Normalize([]float64{10, 20, 40}); !slices.Equal(got, []float64{25, 50, 100}) {
		t.Errorf("Normalize = %v", got)
	}
	if got := Normalize([]float64{0, 0}); !slices.Equal(got, []float64{0, 0}) {
		t.Errorf("Normalize zeros = %v", got)
	}
}
