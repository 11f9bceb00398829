// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/internal/middleware"
	"github.com/crmsuite/zoom-sync-service/internal/service"
	"github.com/crmsuite/zoom-sync-service/pkg/constants"
)

// ZoomWebhookHandler receives webhook deliveries from Zoom. It authenticates
// each delivery with the HMAC signature headers, never with a bearer token,
// and answers the endpoint.url_validation challenge inline.
type ZoomWebhookHandler struct {
	webhookService *service.WebhookService
}

// NewZoomWebhookHandler creates a new ZoomWebhookHandler.
func NewZoomWebhookHandler(webhookService *service.WebhookService) *ZoomWebhookHandler {
	return &ZoomWebhookHandler{webhookService: webhookService}
}

// Register mounts the webhook receiver on the mux.
func (h *ZoomWebhookHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhooks/zoom", h.HandleWebhook)
}

// HandleWebhook handles POST /webhooks/zoom. The signature is computed over
// the raw request bytes, so the body comes from the capture middleware rather
// than a re-marshal of the decoded event.
func (h *ZoomWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, ok := middleware.GetRawBodyFromContext(ctx)
	if !ok {
		writeError(ctx, w, domain.NewValidationError("missing webhook request body"))
		return
	}

	signature := r.Header.Get(constants.ZoomSignatureHeader)
	timestamp := r.Header.Get(constants.ZoomTimestampHeader)
	if err := h.webhookService.ValidateSignature(body, signature, timestamp); err != nil {
		slog.WarnContext(ctx, "webhook signature validation failed", logging.ErrKey, err)
		writeError(ctx, w, err)
		return
	}

	var event models.ZoomWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(ctx, w, domain.NewValidationError("invalid webhook payload", err))
		return
	}

	ctx = logging.AppendCtx(ctx, slog.String("zoom_event", event.Event))

	if event.Event == models.ZoomEventEndpointURLValidation {
		response, err := h.webhookService.HandleURLValidation(ctx, &event)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, response)
		return
	}

	if err := h.webhookService.HandleEvent(ctx, &event); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "success"})
}
