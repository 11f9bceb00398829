// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// NatsCredentialRepository is the NATS KV store repository for Zoom account
// credentials. The bucket holds one record per connected Zoom account.
type NatsCredentialRepository struct {
	*NatsBaseRepository[models.Credential]
	keyBuilder *KeyBuilder
}

// NewNatsCredentialRepository creates a new NATS KV store repository for credentials.
func NewNatsCredentialRepository(kvStore INatsKeyValue) *NatsCredentialRepository {
	return &NatsCredentialRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Credential](kvStore, "credential"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// IsReady checks if the repository is ready
func (r *NatsCredentialRepository) IsReady(ctx context.Context) bool {
	return r.NatsBaseRepository.IsReady()
}

// Save upserts a credential record. Unlike Create/Update on the other
// repositories this is not revision-guarded: saving connection settings
// always replaces what is stored.
func (r *NatsCredentialRepository) Save(ctx context.Context, credential *models.Credential) error {
	if !r.IsReady(ctx) {
		return domain.NewUnavailableError("credential repository is not available")
	}

	if credential.UID == "" {
		credential.UID = uuid.New().String()
	}

	now := time.Now().UTC()
	if credential.CreatedAt == nil {
		credential.CreatedAt = &now
	}
	credential.UpdatedAt = &now

	data, err := r.Marshal(ctx, credential)
	if err != nil {
		return err
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixCredential, credential.UID)
	if _, err := r.kvStore.Put(ctx, key, data); err != nil {
		slog.ErrorContext(ctx, "error saving credential to NATS KV", logging.ErrKey, err)
		return domain.NewInternalError("failed to save credential", err)
	}

	return nil
}

// Get retrieves a credential by UID
func (r *NatsCredentialRepository) Get(ctx context.Context, credentialUID string) (*models.Credential, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixCredential, credentialUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// GetWithRevision retrieves a credential with revision by UID
func (r *NatsCredentialRepository) GetWithRevision(ctx context.Context, credentialUID string) (*models.Credential, uint64, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixCredential, credentialUID)
	return r.NatsBaseRepository.GetWithRevision(ctx, key)
}

// Update updates an existing credential with a revision guard, used when
// recording verification results against a known version of the record.
func (r *NatsCredentialRepository) Update(ctx context.Context, credential *models.Credential, revision uint64) error {
	now := time.Now().UTC()
	credential.UpdatedAt = &now
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixCredential, credential.UID)
	return r.NatsBaseRepository.Update(ctx, key, credential, revision)
}
