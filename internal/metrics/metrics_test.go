package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fibdev/internal/session"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	return rec.Body.String()
}

func TestNew_IndependentRegistries(t *testing.T) {
	t.Parallel()
	a, b := New(), New()
	if a.Registry() == b.Registry() {
		t.Fatal("each Metrics must own its registry")
	}
	a.Busy()
	if !strings.Contains(scrape(t, a), "fibdev_sessions_busy_total 1") {
		t.Error("busy counter not exported")
	}
	if !strings.Contains(scrape(t, b), "fibdev_sessions_busy_total 0") {
		t.Error("second instance must not share counters")
	}
}

func TestMetrics_ObservesDevice(t *testing.T) {
	t.Parallel()
	m := New()
	dev := session.NewDevice(session.WithObserver(m))

	s, err := dev.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(scrape(t, m), "fibdev_active_sessions 1") {
		t.Error("active session gauge not raised")
	}
	if _, err := dev.Acquire(); err == nil {
		t.Fatal("second acquire should fail")
	}
	s.Seek(20, session.Absolute)
	if _, err := s.ReadCurrent(); err != nil {
		t.Fatal(err)
	}
	if err := s.Release(); err != nil {
		t.Fatal(err)
	}

	body := scrape(t, m)
	for _, want := range []string{
		"fibdev_sessions_acquired_total 1",
		"fibdev_sessions_busy_total 1",
		"fibdev_reads_total 1",
		"fibdev_active_sessions 0",
		"fibdev_compute_seconds_count 1",
		"fibdev_session_held_seconds_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_RuntimeGauges(t *testing.T) {
	t.Parallel()
	body := scrape(t, New())
	for _, want := range []string{"fibdev_heap_alloc_bytes", "fibdev_gc_cycles_total", "fibdev_host_memory_percent", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_Requests(t *testing.T) {
	t.Parallel()
	m := New()
	m.IncrementActiveRequests()
	if !strings.Contains(scrape(t, m), "fibdev_http_active_requests 1") {
		t.Error("active requests gauge not raised")
	}
	m.DecrementActiveRequests()
	m.ObserveRequest("/fib", http.StatusServiceUnavailable, 3*time.Millisecond)

	body := scrape(t, m)
	if !strings.Contains(body, `fibdev_http_requests_total{code="503",route="/fib"} 1`) {
		t.Errorf("request counter missing:\n%s", body)
	}
	if !strings.Contains(body, "fibdev_http_active_requests 0") {
		t.Error("active requests gauge not lowered")
	}
}
