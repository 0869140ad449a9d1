// Package server exposes the device over HTTP. Every /fib request opens the
// device, seeks, reads and closes it again, so concurrent requests contend
// for the same exclusive session and losers receive 503.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/fibdev/internal/device"
	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/logging"
	"github.com/agbru/fibdev/internal/metrics"
)

const (
	tracerName        = "github.com/agbru/fibdev/internal/server"
	readHeaderTimeout = 5 * time.Second
)

// Server is the HTTP front of a device node.
type Server struct {
	node            *device.Node
	metrics         *metrics.Metrics
	logger          logging.Logger
	security        SecurityConfig
	tracer          trace.Tracer
	addr            string
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address used by Run.
func WithAddr(addr string) Option { return func(s *Server) { s.addr = addr } }

// WithSecurityConfig replaces DefaultSecurityConfig.
func WithSecurityConfig(c SecurityConfig) Option { return func(s *Server) { s.security = c } }

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// New creates a server. m and logger may be nil.
func New(node *device.Node, m *metrics.Metrics, logger logging.Logger, opts ...Option) *Server {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		node:            node,
		metrics:         m,
		logger:          logger,
		security:        DefaultSecurityConfig(),
		tracer:          otel.Tracer(tracerName),
		addr:            ":8080",
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in SecurityMiddleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /fib/{n}", s.metricsMiddleware("/fib", s.handleFib))
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("GET /healthz", s.metricsMiddleware("/healthz", s.handleHealth))
	return SecurityMiddleware(s.security, mux.ServeHTTP)
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return apperrors.WrapError(err, "listen %s", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully
// within the shutdown timeout. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", logging.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type fibResponse struct {
	Index     int64  `json:"index"`
	Digits    string `json:"digits"`
	ElapsedNs int64  `json:"elapsed_ns"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleFib(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.Start(r.Context(), "device.read")
	defer span.End()

	raw := r.PathValue("n")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		span.SetStatus(codes.Error, "bad index")
		s.writeError(w, http.StatusBadRequest, "invalid index "+strconv.Quote(raw))
		return
	}
	whence := io.SeekStart
	if q := r.URL.Query().Get("whence"); q != "" {
		if whence, err = device.ParseWhence(q); err != nil {
			span.SetStatus(codes.Error, "bad whence")
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	span.SetAttributes(attribute.Int64("fib.offset", n), attribute.Int("fib.whence", whence))

	f, err := s.node.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		if errors.Is(err, apperrors.ErrBusy) {
			s.writeError(w, http.StatusServiceUnavailable, apperrors.ErrBusy.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	if _, err := f.Seek(n, whence); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	reading, err := f.ReadValue()
	if err != nil {
		span.RecordError(err)
		s.logger.Error("device read failed", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	span.SetAttributes(attribute.Int64("fib.index", reading.Index), attribute.Int("fib.digits", len(reading.Digits)))

	s.writeJSON(w, http.StatusOK, fibResponse{
		Index:     reading.Index,
		Digits:    reading.Digits,
		ElapsedNs: reading.Elapsed.Nanoseconds(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"in_use": s.node.Device().InUse(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.logger.Debug("metrics: method not allowed", logging.String("method", r.Method))
		w.Header().Set("Allow", http.MethodGet)
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg})
}
