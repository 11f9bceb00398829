// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package zoom

import (
	"context"
	"strings"
	"sync"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/zoom/api"
)

// ClientSource yields the API client for a gateway call.
type ClientSource interface {
	Client(ctx context.Context) (api.ClientAPI, error)
}

// staticClientSource always returns the same client.
type staticClientSource struct {
	client api.ClientAPI
}

func (s staticClientSource) Client(context.Context) (api.ClientAPI, error) {
	return s.client, nil
}

// CredentialClientSource builds the API client from the stored credential,
// falling back to the boot configuration while none is stored. The client
// (and with it the token cache) is kept until the credential fields change,
// so saving a new credential takes effect on the next call.
type CredentialClientSource struct {
	repository    domain.CredentialRepository
	credentialUID string
	fallback      api.Config

	mu        sync.Mutex
	client    api.ClientAPI
	clientKey string
}

// Ensure that CredentialClientSource implements ClientSource
var _ ClientSource = (*CredentialClientSource)(nil)

// NewCredentialClientSource creates a source reading the credential stored
// under credentialUID, with fallback as the boot-time configuration.
func NewCredentialClientSource(repository domain.CredentialRepository, credentialUID string, fallback api.Config) *CredentialClientSource {
	return &CredentialClientSource{
		repository:    repository,
		credentialUID: credentialUID,
		fallback:      fallback,
	}
}

// Client implements ClientSource.
func (s *CredentialClientSource) Client(ctx context.Context) (api.ClientAPI, error) {
	config, err := s.resolveConfig(ctx)
	if err != nil {
		return nil, err
	}

	key := strings.Join([]string{
		config.ClientID,
		config.ClientSecret,
		config.AccountID,
		config.BaseURL,
		config.AuthURL,
	}, "\x00")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil || s.clientKey != key {
		s.client = api.NewClient(config)
		s.clientKey = key
	}
	return s.client, nil
}

func (s *CredentialClientSource) resolveConfig(ctx context.Context) (api.Config, error) {
	credential, err := s.repository.Get(ctx, s.credentialUID)
	if err != nil && domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		return api.Config{}, err
	}

	config := s.fallback
	if err == nil && credential.IsConfigured() {
		config.ClientID = credential.ClientID
		config.ClientSecret = credential.ClientSecret
		config.AccountID = credential.AccountID
		if credential.BaseURL != "" {
			config.BaseURL = credential.BaseURL
		}
		if credential.AuthURL != "" {
			config.AuthURL = credential.AuthURL
		}
	}

	if config.ClientID == "" || config.ClientSecret == "" || config.AccountID == "" {
		return api.Config{}, domain.NewConfigurationError("no Zoom credential is configured")
	}
	return config, nil
}
