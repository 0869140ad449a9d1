package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agbru/fibdev/internal/logging"
	"github.com/agbru/fibdev/internal/metrics"
)

func TestServer_metricsMiddleware(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	s := &Server{metrics: m}

	nextCalled := false
	handler := s.metricsMiddleware("/test", func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	scrape := httptest.NewRecorder()
	m.WritePrometheus(scrape, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	body := scrape.Body.String()
	assert.Contains(t, body, `fibdev_http_requests_total{code="418",route="/test"} 1`)
	assert.Contains(t, body, "fibdev_http_active_requests 0")
}

func TestServer_metricsMiddleware_DefaultStatus(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	s := &Server{metrics: m}

	handler := s.metricsMiddleware("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("implicit 200"))
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", http.NoBody))

	scrape := httptest.NewRecorder()
	m.WritePrometheus(scrape, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Contains(t, scrape.Body.String(), `fibdev_http_requests_total{code="200",route="/ok"} 1`)
}

func TestServer_handleMetrics(t *testing.T) {
	t.Parallel()

	t.Run("GET returns metrics", func(t *testing.T) {
		t.Parallel()
		s := &Server{metrics: metrics.New(), logger: newTestLogger()}
		rec := httptest.NewRecorder()
		s.handleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.Contains(rec.Body.String(), "fibdev_"))
	})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method+" returns method not allowed", func(t *testing.T) {
			t.Parallel()
			s := &Server{metrics: metrics.New(), logger: newTestLogger()}
			rec := httptest.NewRecorder()
			s.handleMetrics(rec, httptest.NewRequest(method, "/metrics", http.NoBody))

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
		})
	}
}

// testLogger is a minimal logger for testing that implements logging.Logger.
type testLogger struct{}

func newTestLogger() *testLogger                                  { return &testLogger{} }
func (l *testLogger) Info(_ string, _ ...logging.Field)           {}
func (l *testLogger) Warn(_ string, _ ...logging.Field)           {}
func (l *testLogger) Error(_ string, _ error, _ ...logging.Field) {}
func (l *testLogger) Debug(_ string, _ ...logging.Field)          {}
func (l *testLogger) Printf(_ string, _ ...any)                   {}
func (l *testLogger) Println(_ ...any)                            {}
