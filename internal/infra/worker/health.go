// Package worker hosts the worker process's operational surface: health
// checks and driver-state reporting for the Orchestrator (C10).
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// DriverState reports a StateFunc's current value for /health/state.
type DriverState func() string

// HealthServer exposes /health (liveness), /health/ready (readiness), and
// /health/state (current Update/Broadcast driver states) for the worker
// process.
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	isReady *atomic.Bool
	server  *http.Server

	updateState    DriverState
	broadcastState DriverState
}

type healthResponse struct {
	Status string `json:"status"`
}

type stateResponse struct {
	Update    string `json:"update"`
	Broadcast string `json:"broadcast"`
}

func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	isReady := &atomic.Bool{}
	isReady.Store(false)
	return &HealthServer{addr: addr, logger: logger, isReady: isReady}
}

// SetDriverStates wires in the Orchestrator's state accessors so
// /health/state can report them without the worker package depending on
// the orchestrator package directly.
func (h *HealthServer) SetDriverStates(update, broadcast DriverState) {
	h.updateState = update
	h.broadcastState = broadcast
}

// Start blocks until ctx is canceled, then shuts down within 5s.
func (h *HealthServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	mux.HandleFunc("/health/state", h.handleState)

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		return http.ErrServerClosed
	case err := <-errChan:
		if err != http.ErrServerClosed {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.isReady.Load() {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "not ready"})
}

func (h *HealthServer) handleState(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{Update: "unknown", Broadcast: "unknown"}
	if h.updateState != nil {
		resp.Update = h.updateState()
	}
	if h.broadcastState != nil {
		resp.Broadcast = h.broadcastState()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
