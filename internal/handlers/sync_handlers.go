// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"

	"github.com/crmsuite/zoom-sync-service/internal/service"
)

// SyncHandler serves the admin triggers that run the background jobs on
// demand: the Zoom reconciliation pass and the reminder sweep.
type SyncHandler struct {
	syncService     *service.SyncService
	reminderService *service.ReminderService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncService *service.SyncService, reminderService *service.ReminderService) *SyncHandler {
	return &SyncHandler{
		syncService:     syncService,
		reminderService: reminderService,
	}
}

// Register mounts the admin trigger routes on the mux.
func (h *SyncHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /sync", h.RunSync)
	mux.HandleFunc("POST /reminders/run", h.RunReminders)
}

// RunSync handles POST /sync. A pass already in flight comes back as a
// conflict rather than queuing a second run.
func (h *SyncHandler) RunSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.syncService.PullSync(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}

// RunReminders handles POST /reminders/run.
func (h *SyncHandler) RunReminders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.reminderService.RunSweep(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}
