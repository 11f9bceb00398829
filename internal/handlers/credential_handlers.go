// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"

	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/service"
)

// CredentialHandler serves the Zoom credential endpoints. The credential is
// a singleton resource, so the routes carry no identifier.
type CredentialHandler struct {
	credentialService *service.CredentialService
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(credentialService *service.CredentialService) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

// Register mounts the credential routes on the mux.
func (h *CredentialHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("PUT /credential", h.SaveCredential)
	mux.HandleFunc("GET /credential", h.GetCredential)
	mux.HandleFunc("POST /credential/test", h.TestConnection)
}

// SaveCredential handles PUT /credential.
func (h *CredentialHandler) SaveCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload models.Credential
	if err := decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	credential, err := h.credentialService.SaveCredential(ctx, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, credential)
}

// GetCredential handles GET /credential. The secret comes back redacted.
func (h *CredentialHandler) GetCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	credential, err := h.credentialService.GetCredential(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, credential)
}

// TestConnection handles POST /credential/test.
func (h *CredentialHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	credential, err := h.credentialService.TestConnection(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, credential)
}
