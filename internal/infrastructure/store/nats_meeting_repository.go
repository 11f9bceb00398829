// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// NatsMeetingRepository is the NATS KV store repository for meetings.
type NatsMeetingRepository struct {
	*NatsBaseRepository[models.Meeting]
	keyBuilder *KeyBuilder
}

// NewNatsMeetingRepository creates a new NATS KV store repository for meetings.
func NewNatsMeetingRepository(kvStore INatsKeyValue) *NatsMeetingRepository {
	return &NatsMeetingRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Meeting](kvStore, "meeting"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// IsReady checks if the repository is ready
func (r *NatsMeetingRepository) IsReady(ctx context.Context) bool {
	return r.NatsBaseRepository.IsReady()
}

// Create creates a new meeting and maintains the remote ID index.
func (r *NatsMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.UID == "" {
		meeting.UID = uuid.New().String()
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixMeeting, meeting.UID)
	err := r.NatsBaseRepository.Create(ctx, key, meeting)
	if err != nil {
		return err
	}

	if meeting.RemoteID != "" {
		if err := r.putRemoteIndex(ctx, meeting); err != nil {
			slog.WarnContext(ctx, "failed to create remote ID index", logging.ErrKey, err, "meeting_uid", meeting.UID)
			// Don't fail the operation if indexing fails
		}
	}

	return nil
}

// Exists checks if a meeting exists
func (r *NatsMeetingRepository) Exists(ctx context.Context, meetingUID string) (bool, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixMeeting, meetingUID)
	return r.NatsBaseRepository.Exists(ctx, key)
}

// Get retrieves a meeting by UID
func (r *NatsMeetingRepository) Get(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixMeeting, meetingUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// GetWithRevision retrieves a meeting with revision by UID
func (r *NatsMeetingRepository) GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixMeeting, meetingUID)
	return r.NatsBaseRepository.GetWithRevision(ctx, key)
}

// Update updates an existing meeting. The remote ID index is refreshed so
// that meetings linked to Zoom after creation become resolvable by remote ID.
func (r *NatsMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixMeeting, meeting.UID)
	err := r.NatsBaseRepository.Update(ctx, key, meeting, revision)
	if err != nil {
		return err
	}

	if meeting.RemoteID != "" {
		if err := r.putRemoteIndex(ctx, meeting); err != nil {
			slog.WarnContext(ctx, "failed to refresh remote ID index", logging.ErrKey, err, "meeting_uid", meeting.UID)
		}
	}

	return nil
}

// Delete removes a meeting and its remote ID index.
func (r *NatsMeetingRepository) Delete(ctx context.Context, meetingUID string, revision uint64) error {
	// Get the meeting first for index cleanup
	meeting, err := r.Get(ctx, meetingUID)
	if err != nil {
		return err
	}

	if meeting.RemoteID != "" {
		indexKey := r.remoteIndexKey(meeting.RemoteID)
		if err := r.DeleteIndex(ctx, indexKey); err != nil {
			slog.WarnContext(ctx, "failed to delete remote ID index", logging.ErrKey, err, "meeting_uid", meetingUID)
			// Don't fail the operation if index cleanup fails
		}
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixMeeting, meetingUID)
	return r.NatsBaseRepository.Delete(ctx, key, revision)
}

// GetByRemoteID resolves a meeting by its Zoom meeting ID using the remote
// ID index, which stores the meeting UID as its value.
func (r *NatsMeetingRepository) GetByRemoteID(ctx context.Context, remoteID string) (*models.Meeting, error) {
	indexKey := r.remoteIndexKey(remoteID)
	entry, err := r.GetRaw(ctx, indexKey)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("meeting with remote ID '%s' not found", remoteID), err)
		}
		return nil, err
	}

	return r.Get(ctx, string(entry.Value()))
}

// ListAll lists all meetings
func (r *NatsMeetingRepository) ListAll(ctx context.Context) ([]*models.Meeting, error) {
	pattern := KeyPrefixMeeting + "/"
	return r.ListEntitiesEncoded(ctx, pattern, r.keyBuilder)
}

func (r *NatsMeetingRepository) remoteIndexKey(remoteID string) string {
	key := fmt.Sprintf("%s/%s/%s", KeyPrefixIndex, KeyPrefixIndexRemote, remoteID)
	encoded, err := r.keyBuilder.EncodeKey(key)
	if err != nil {
		slog.Error("error encoding remote index key", logging.ErrKey, err, "key", key)
		return key
	}
	return encoded
}

func (r *NatsMeetingRepository) putRemoteIndex(ctx context.Context, meeting *models.Meeting) error {
	indexKey := r.remoteIndexKey(meeting.RemoteID)
	_, err := r.kvStore.Put(ctx, indexKey, []byte(meeting.UID))
	return err
}
