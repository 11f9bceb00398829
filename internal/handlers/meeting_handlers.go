// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/internal/service"
)

// MeetingHandler serves the meetings REST resource.
type MeetingHandler struct {
	meetingService *service.MeetingService
}

// NewMeetingHandler creates a new MeetingHandler.
func NewMeetingHandler(meetingService *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: meetingService}
}

// Register mounts the meeting routes on the mux.
func (h *MeetingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /meetings", h.CreateMeeting)
	mux.HandleFunc("GET /meetings", h.ListMeetings)
	mux.HandleFunc("GET /meetings/{uid}", h.GetMeeting)
	mux.HandleFunc("PUT /meetings/{uid}", h.UpdateMeeting)
	mux.HandleFunc("DELETE /meetings/{uid}", h.DeleteMeeting)
	mux.HandleFunc("POST /meetings/{uid}/cancel", h.CancelMeeting)
	mux.HandleFunc("POST /meetings/{uid}/start", h.StartMeeting)
	mux.HandleFunc("POST /meetings/{uid}/end", h.EndMeeting)
	mux.HandleFunc("GET /meetings/{uid}/stats", h.GetMeetingStats)
}

// CreateMeeting handles POST /meetings.
func (h *MeetingHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload models.Meeting
	if err := decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	meeting, err := h.meetingService.CreateMeeting(ctx, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, meeting)
}

// ListMeetings handles GET /meetings.
func (h *MeetingHandler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meetings, err := h.meetingService.ListMeetings(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, meetings)
}

// GetMeeting handles GET /meetings/{uid}.
func (h *MeetingHandler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("meeting_uid", r.PathValue("uid")))

	meeting, err := h.meetingService.GetMeeting(ctx, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, meeting)
}

// UpdateMeeting handles PUT /meetings/{uid}.
func (h *MeetingHandler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("meeting_uid", r.PathValue("uid")))

	var payload models.Meeting
	if err := decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	payload.UID = r.PathValue("uid")

	meeting, err := h.meetingService.UpdateMeeting(ctx, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, meeting)
}

// DeleteMeeting handles DELETE /meetings/{uid}.
func (h *MeetingHandler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("meeting_uid", r.PathValue("uid")))

	if err := h.meetingService.DeleteMeeting(ctx, r.PathValue("uid")); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusNoContent, nil)
}

// CancelMeeting handles POST /meetings/{uid}/cancel.
func (h *MeetingHandler) CancelMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("meeting_uid", r.PathValue("uid")))

	meeting, err := h.meetingService.CancelMeeting(ctx, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, meeting)
}

// StartMeeting handles POST /meetings/{uid}/start.
func (h *MeetingHandler) StartMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("meeting_uid", r.PathValue("uid")))

	meeting, err := h.meetingService.StartMeeting(ctx, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, meeting)
}

// EndMeeting handles POST /meetings/{uid}/end.
func (h *MeetingHandler) EndMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("meeting_uid", r.PathValue("uid")))

	meeting, err := h.meetingService.EndMeeting(ctx, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, meeting)
}

// GetMeetingStats handles GET /meetings/{uid}/stats.
func (h *MeetingHandler) GetMeetingStats(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("meeting_uid", r.PathValue("uid")))

	meeting, err := h.meetingService.GetMeeting(ctx, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, meeting.Stats)
}
