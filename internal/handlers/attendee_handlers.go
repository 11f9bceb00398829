// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/internal/service"
)

// AttendeeHandler serves the attendees REST resource, both the per-meeting
// collection and the per-attendee RSVP actions.
type AttendeeHandler struct {
	attendeeService *service.AttendeeService
}

// NewAttendeeHandler creates a new AttendeeHandler.
func NewAttendeeHandler(attendeeService *service.AttendeeService) *AttendeeHandler {
	return &AttendeeHandler{attendeeService: attendeeService}
}

// Register mounts the attendee routes on the mux.
func (h *AttendeeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /meetings/{uid}/attendees", h.AddAttendee)
	mux.HandleFunc("GET /meetings/{uid}/attendees", h.ListAttendees)
	mux.HandleFunc("GET /attendees/{uid}", h.GetAttendee)
	mux.HandleFunc("DELETE /attendees/{uid}", h.RemoveAttendee)
	mux.HandleFunc("POST /attendees/{uid}/confirm", h.action((*service.AttendeeService).ConfirmAttendance))
	mux.HandleFunc("POST /attendees/{uid}/decline", h.action((*service.AttendeeService).Decline))
	mux.HandleFunc("POST /attendees/{uid}/attended", h.action((*service.AttendeeService).MarkAttended))
	mux.HandleFunc("POST /attendees/{uid}/no-show", h.action((*service.AttendeeService).MarkNoShow))
}

// AddAttendee handles POST /meetings/{uid}/attendees.
func (h *AttendeeHandler) AddAttendee(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("meeting_uid", r.PathValue("uid")))

	var payload models.Attendee
	if err := decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	payload.MeetingUID = r.PathValue("uid")

	attendee, err := h.attendeeService.AddAttendee(ctx, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, attendee)
}

// ListAttendees handles GET /meetings/{uid}/attendees.
func (h *AttendeeHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("meeting_uid", r.PathValue("uid")))

	attendees, err := h.attendeeService.ListAttendees(ctx, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, attendees)
}

// GetAttendee handles GET /attendees/{uid}.
func (h *AttendeeHandler) GetAttendee(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("attendee_uid", r.PathValue("uid")))

	attendee, err := h.attendeeService.GetAttendee(ctx, r.PathValue("uid"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, attendee)
}

// RemoveAttendee handles DELETE /attendees/{uid}.
func (h *AttendeeHandler) RemoveAttendee(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("attendee_uid", r.PathValue("uid")))

	if err := h.attendeeService.RemoveAttendee(ctx, r.PathValue("uid")); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusNoContent, nil)
}

// action adapts the RSVP transition methods, which all share the same
// signature, into handlers for the POST /attendees/{uid}/<action> routes.
func (h *AttendeeHandler) action(fn func(*service.AttendeeService, context.Context, string) (*models.Attendee, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.AppendCtx(r.Context(), slog.String("attendee_uid", r.PathValue("uid")))

		attendee, err := fn(h.attendeeService, ctx, r.PathValue("uid"))
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, attendee)
	}
}
