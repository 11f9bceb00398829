// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/internal/metrics"
)

// CredentialUID is the well-known key of the single credential record.
const CredentialUID = "zoom-account"

// CredentialService manages the stored Zoom OAuth credential and its
// connection status.
type CredentialService struct {
	CredentialRepository domain.CredentialRepository
	Gateway              domain.MeetingGateway
	Config               ServiceConfig
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(
	credentialRepository domain.CredentialRepository,
	gateway domain.MeetingGateway,
	config ServiceConfig,
) *CredentialService {
	return &CredentialService{
		CredentialRepository: credentialRepository,
		Gateway:              gateway,
		Config:               config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *CredentialService) ServiceReady() bool {
	return s.CredentialRepository != nil && s.Gateway != nil
}

// SaveCredential stores the credential under the well-known key and
// recomputes its connection status from the fields present.
func (s *CredentialService) SaveCredential(ctx context.Context, credential *models.Credential) (*models.Credential, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if credential == nil {
		return nil, domain.NewValidationError("credential payload is required")
	}

	credential.UID = CredentialUID
	if credential.IsConfigured() {
		credential.ConnectionStatus = models.ConnectionStatusConfigured
	} else {
		credential.ConnectionStatus = models.ConnectionStatusNotConfigured
	}
	credential.LastError = ""

	if err := s.CredentialRepository.Save(ctx, credential); err != nil {
		return nil, err
	}
	metrics.SetZoomConnectionUp(false)

	slog.InfoContext(ctx, "saved Zoom credential",
		"account_id", credential.AccountID,
		"connection_status", string(credential.ConnectionStatus),
	)

	return credential.Redacted(), nil
}

// GetCredential fetches the stored credential with the secret masked.
func (s *CredentialService) GetCredential(ctx context.Context) (*models.Credential, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	credential, err := s.CredentialRepository.Get(ctx, CredentialUID)
	if err != nil {
		return nil, err
	}

	return credential.Redacted(), nil
}

// TestConnection verifies the credential against the platform API and
// persists the outcome on the record.
func (s *CredentialService) TestConnection(ctx context.Context) (*models.Credential, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	credential, revision, err := s.CredentialRepository.GetWithRevision(ctx, CredentialUID)
	if err != nil {
		return nil, err
	}
	if !credential.IsConfigured() {
		return nil, domain.NewConfigurationError("credential is not fully configured")
	}

	now := time.Now().UTC()
	testErr := s.Gateway.TestConnection(ctx)
	metrics.RecordZoomAPICall("test_connection", testErr == nil)
	if testErr != nil {
		credential.ConnectionStatus = models.ConnectionStatusError
		credential.LastError = testErr.Error()
	} else {
		credential.ConnectionStatus = models.ConnectionStatusConnected
		credential.LastError = ""
		credential.LastVerifiedAt = &now
	}
	metrics.SetZoomConnectionUp(testErr == nil)

	if err := s.CredentialRepository.Update(ctx, credential, revision); err != nil {
		slog.WarnContext(ctx, "failed to persist connection test outcome", logging.ErrKey, err)
	}
	if testErr != nil {
		return nil, testErr
	}

	return credential.Redacted(), nil
}

// MarkConnectionError flips the credential to the error state, best-effort.
// Used by callers that hit an authentication failure mid-operation.
func (s *CredentialService) MarkConnectionError(ctx context.Context, cause error) {
	if !s.ServiceReady() {
		return
	}

	credential, revision, err := s.CredentialRepository.GetWithRevision(ctx, CredentialUID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load credential to record error", logging.ErrKey, err)
		return
	}

	credential.ConnectionStatus = models.ConnectionStatusError
	if cause != nil {
		credential.LastError = cause.Error()
	}
	metrics.SetZoomConnectionUp(false)

	if err := s.CredentialRepository.Update(ctx, credential, revision); err != nil {
		slog.WarnContext(ctx, "failed to persist credential error state", logging.ErrKey, err)
	}
}
