// Package statusserver exposes the daemon's last decision and its metrics
// over HTTP.
package statusserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Logger interface {
	Printf(format string, v ...any)
}

// StatusFunc returns the value served on /status, or nil before the first
// decision.
type StatusFunc func() any

type Server struct {
	//required
	addr    string
	status  StatusFunc
	metrics *Metrics
	logger  Logger

	//internal
	srv      *http.Server
	listener net.Listener
}

func New(addr string, status StatusFunc, metrics *Metrics, logger Logger) (*Server, error) {
	if addr == "" {
		return nil, errors.New("listen address is required")
	}
	if status == nil {
		return nil, errors.New("status func is required")
	}
	if metrics == nil {
		return nil, errors.New("metrics is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	s := &Server{addr: addr, status: status, metrics: metrics, logger: logger}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler is the full route set with request logging and panic recovery.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/status", s.lastDecision).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	recovered := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}))(r)
	return handlers.CombinedLoggingHandler(logWriter{s.logger}, recovered)
}

// Start binds the listener and serves on its own goroutine. Bind errors are
// returned directly.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.logger.Printf("[status] listening on %s", ln.Addr())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("[status] server stopped: %v", err)
		}
	}()
	return nil
}

// Addr is the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) lastDecision(w http.ResponseWriter, r *http.Request) {
	v := s.status()
	if v == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no decision yet"})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type logWriter struct{ logger Logger }

func (lw logWriter) Write(p []byte) (int, error) {
	lw.logger.Printf("[http] %s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

type recoveryLogger struct{ logger Logger }

func (rl recoveryLogger) Println(v ...any) {
	rl.logger.Printf("[http] recovered: %s", fmt.Sprint(v...))
}
