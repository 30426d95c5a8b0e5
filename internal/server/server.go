// Package server exposes the agent over HTTP: probes, prometheus metrics,
// the vehicle snapshot and a websocket event feed.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autopeer-io/gcslink/internal/pkg/metrics"
	"github.com/autopeer-io/gcslink/pkg/log"
	"github.com/autopeer-io/gcslink/pkg/options"
)

// Source provides the vehicle state served by the API.
type Source interface {
	// Ready returns nil once the link is up and a heartbeat has been seen.
	Ready() error
	// Snapshot returns a JSON-encodable copy of the vehicle state.
	Snapshot(ctx context.Context) (any, error)
}

type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          log.Logger
}

func NewServer(opts *options.HttpOptions, src Source, hub *Hub, logger log.Logger) *Server {
	// No write timeout: the event stream is long-lived.
	srv := &http.Server{
		Addr:        opts.Addr,
		Handler:     NewRouter(src, hub, opts.RequestTimeout),
		ReadTimeout: opts.ReadTimeout,
	}
	srv.RegisterOnShutdown(hub.Close)
	return &Server{server: srv, shutdownTimeout: opts.ShutdownTimeout, logger: logger}
}

// NewRouter builds the HTTP routes. timeout bounds the snapshot request.
func NewRouter(src Source, hub *Hub, timeout time.Duration) *mux.Router {
	r := mux.NewRouter()

	// Basic Liveness Probe
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if err := src.Ready(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/vehicle", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()

		snap, err := src.Snapshot(ctx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}).Methods(http.MethodGet)
	api.Handle("/events", hub).Methods(http.MethodGet)

	return r
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP Server", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
