// Package web exposes the operational HTTP surface: health check,
// Prometheus metrics and the last-pass status document.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seedwarden/internal/enforcer"
	"seedwarden/internal/log"
)

// StatsSource provides the most recent pass summary.
type StatsSource interface {
	LastPass() (enforcer.PassStats, bool)
}

// Server is the status/metrics HTTP listener.
type Server struct {
	srv *http.Server
}

// New creates a server bound to addr.
func New(addr string, stats StatsSource) *Server {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/status", statusHandler(stats))

	return &Server{
		srv: &http.Server{Addr: addr, Handler: r},
	}
}

func statusHandler(stats StatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		last, ok := stats.LastPass()
		if !ok {
			http.Error(w, `{"error":"no pass completed yet"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(last); err != nil {
			log.Error("web").Err(err).Msg("Failed to encode status")
		}
	}
}

// Start listens until Stop is called. A closed-server error is not
// reported as a failure.
func (s *Server) Start() error {
	log.Info("web").Str("addr", s.srv.Addr).Msg("Starting status server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
