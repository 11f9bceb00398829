// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/service"
)

// DashboardHandler serves the aggregate counters backing the CRM
// dashboard view.
type DashboardHandler struct {
	meetingService    *service.MeetingService
	credentialService *service.CredentialService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(meetingService *service.MeetingService, credentialService *service.CredentialService) *DashboardHandler {
	return &DashboardHandler{
		meetingService:    meetingService,
		credentialService: credentialService,
	}
}

// Register mounts the dashboard route on the mux.
func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /stats", h.GetStats)
}

// GetStats handles GET /stats.
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.meetingService.GetDashboardStats(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	credential, err := h.credentialService.GetCredential(ctx)
	switch {
	case err == nil:
		stats.ConnectionStatus = credential.ConnectionStatus
		stats.LastVerifiedAt = credential.LastVerifiedAt
	case domain.GetErrorType(err) == domain.ErrorTypeNotFound:
		stats.ConnectionStatus = models.ConnectionStatusNotConfigured
	default:
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, stats)
}
