// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

// Package handlers exposes the service over HTTP: the meetings and
// attendees REST resources, the credential and sync admin endpoints, and
// the Zoom webhook receiver.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "failed to encode response body", logging.ErrKey, err)
	}
}

// writeError maps a domain error onto an HTTP status code and writes it
// as a JSON error body.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation, domain.ErrorTypeConfiguration:
		status = http.StatusBadRequest
	case domain.ErrorTypeAuthentication:
		status = http.StatusUnauthorized
	case domain.ErrorTypeNotFound:
		status = http.StatusNotFound
	case domain.ErrorTypeConflict:
		status = http.StatusConflict
	case domain.ErrorTypeRemoteAPI, domain.ErrorTypeTransport:
		status = http.StatusBadGateway
	case domain.ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", logging.ErrKey, err)
	} else {
		slog.DebugContext(ctx, "request rejected", logging.ErrKey, err, "status", status)
	}

	writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
}

// decodeBody decodes the request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return domain.NewValidationError("invalid request body", err)
	}
	return nil
}
