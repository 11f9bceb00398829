// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package zoom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/zoom/api"
)

const testCredentialUID = "zoom-account"

func TestCredentialClientSource_ResolveConfig(t *testing.T) {
	fallback := api.Config{
		ClientID:     "env-client",
		ClientSecret: "env-secret",
		AccountID:    "env-account",
		BaseURL:      "https://env.example.com/v2",
	}

	t.Run("stored credential wins over the boot configuration", func(t *testing.T) {
		repo := &domain.MockCredentialRepository{}
		repo.On("Get", mock.Anything, testCredentialUID).Return(&models.Credential{
			UID:          testCredentialUID,
			ClientID:     "stored-client",
			ClientSecret: "stored-secret",
			AccountID:    "stored-account",
		}, nil)

		source := NewCredentialClientSource(repo, testCredentialUID, fallback)
		config, err := source.resolveConfig(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "stored-client", config.ClientID)
		assert.Equal(t, "stored-secret", config.ClientSecret)
		assert.Equal(t, "stored-account", config.AccountID)
		// URL overrides stay from the boot configuration unless stored
		assert.Equal(t, "https://env.example.com/v2", config.BaseURL)
	})

	t.Run("no stored credential falls back to the boot configuration", func(t *testing.T) {
		repo := &domain.MockCredentialRepository{}
		repo.On("Get", mock.Anything, testCredentialUID).Return(nil, domain.NewNotFoundError("credential not found"))

		source := NewCredentialClientSource(repo, testCredentialUID, fallback)
		config, err := source.resolveConfig(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "env-client", config.ClientID)
	})

	t.Run("incomplete stored credential is ignored", func(t *testing.T) {
		repo := &domain.MockCredentialRepository{}
		repo.On("Get", mock.Anything, testCredentialUID).Return(&models.Credential{
			UID:      testCredentialUID,
			ClientID: "stored-client",
		}, nil)

		source := NewCredentialClientSource(repo, testCredentialUID, fallback)
		config, err := source.resolveConfig(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "env-client", config.ClientID)
	})

	t.Run("nothing configured anywhere is a configuration error", func(t *testing.T) {
		repo := &domain.MockCredentialRepository{}
		repo.On("Get", mock.Anything, testCredentialUID).Return(nil, domain.NewNotFoundError("credential not found"))

		source := NewCredentialClientSource(repo, testCredentialUID, api.Config{})
		_, err := source.resolveConfig(context.Background())

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeConfiguration, domain.GetErrorType(err))
	})

	t.Run("store failure propagates", func(t *testing.T) {
		repo := &domain.MockCredentialRepository{}
		repo.On("Get", mock.Anything, testCredentialUID).Return(nil, domain.NewInternalError("bucket read failed"))

		source := NewCredentialClientSource(repo, testCredentialUID, fallback)
		_, err := source.resolveConfig(context.Background())

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})
}

func TestCredentialClientSource_RebuildsClientOnCredentialChange(t *testing.T) {
	ctx := context.Background()
	repo := &domain.MockCredentialRepository{}
	stored := &models.Credential{
		UID:          testCredentialUID,
		ClientID:     "client-a",
		ClientSecret: "secret-a",
		AccountID:    "account-a",
	}
	repo.On("Get", mock.Anything, testCredentialUID).Return(stored, nil)

	source := NewCredentialClientSource(repo, testCredentialUID, api.Config{})

	first, err := source.Client(ctx)
	require.NoError(t, err)
	second, err := source.Client(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged credential reuses the client and its token cache")

	stored.ClientSecret = "secret-b"
	third, err := source.Client(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third, "changed credential builds a fresh client")
}
