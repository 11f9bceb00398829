// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"
)

// ReadyChecker is the readiness contract every service in the container
// satisfies.
type ReadyChecker interface {
	ServiceReady() bool
}

// HealthHandler serves the Kubernetes liveness and readiness probes.
type HealthHandler struct {
	checkers []ReadyChecker
}

// NewHealthHandler creates a new HealthHandler over the given services.
func NewHealthHandler(checkers ...ReadyChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

// Register mounts the probe routes on the mux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /livez", h.Livez)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Livez checks if the service is alive.
func (h *HealthHandler) Livez(w http.ResponseWriter, _ *http.Request) {
	// This always returns as long as the service is still running. As this
	// endpoint is expected to be used as a Kubernetes liveness check, this
	// service must likewise self-detect non-recoverable errors and
	// self-terminate.
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// Readyz checks if the service is able to take inbound requests.
func (h *HealthHandler) Readyz(w http.ResponseWriter, _ *http.Request) {
	for _, checker := range h.checkers {
		if !checker.ServiceReady() {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("service unavailable\n"))
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}
