// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// NatsAttendeeRepository is the NATS KV store repository for attendees.
type NatsAttendeeRepository struct {
	*NatsBaseRepository[models.Attendee]
	keyBuilder *KeyBuilder
}

// NewNatsAttendeeRepository creates a new NATS KV store repository for attendees.
func NewNatsAttendeeRepository(kvStore INatsKeyValue) *NatsAttendeeRepository {
	return &NatsAttendeeRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Attendee](kvStore, "attendee"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// IsReady checks if the repository is ready
func (r *NatsAttendeeRepository) IsReady(ctx context.Context) bool {
	return r.NatsBaseRepository.IsReady()
}

// Create creates a new attendee with meeting and email indexing.
func (r *NatsAttendeeRepository) Create(ctx context.Context, attendee *models.Attendee) error {
	if attendee.UID == "" {
		attendee.UID = uuid.New().String()
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixAttendee, attendee.UID)
	err := r.NatsBaseRepository.Create(ctx, key, attendee)
	if err != nil {
		return err
	}

	if err := r.createIndices(ctx, attendee); err != nil {
		slog.WarnContext(ctx, "failed to create indices", logging.ErrKey, err, "attendee_uid", attendee.UID)
		// Don't fail the operation if indexing fails
	}

	return nil
}

// Get retrieves an attendee by UID
func (r *NatsAttendeeRepository) Get(ctx context.Context, attendeeUID string) (*models.Attendee, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixAttendee, attendeeUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// GetWithRevision retrieves an attendee with revision by UID
func (r *NatsAttendeeRepository) GetWithRevision(ctx context.Context, attendeeUID string) (*models.Attendee, uint64, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixAttendee, attendeeUID)
	return r.NatsBaseRepository.GetWithRevision(ctx, key)
}

// Update updates an existing attendee
func (r *NatsAttendeeRepository) Update(ctx context.Context, attendee *models.Attendee, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixAttendee, attendee.UID)
	return r.NatsBaseRepository.Update(ctx, key, attendee, revision)
}

// Delete removes an attendee and its indices.
func (r *NatsAttendeeRepository) Delete(ctx context.Context, attendeeUID string, revision uint64) error {
	// Get the attendee first for index cleanup
	attendee, err := r.Get(ctx, attendeeUID)
	if err != nil {
		return err
	}

	if err := r.deleteIndices(ctx, attendee); err != nil {
		slog.WarnContext(ctx, "failed to delete indices", logging.ErrKey, err, "attendee_uid", attendeeUID)
		// Don't fail the operation if index cleanup fails
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixAttendee, attendeeUID)
	return r.NatsBaseRepository.Delete(ctx, key, revision)
}

// ListByMeeting retrieves all attendees of a meeting
func (r *NatsAttendeeRepository) ListByMeeting(ctx context.Context, meetingUID string) ([]*models.Attendee, error) {
	allAttendees, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var matchingAttendees []*models.Attendee
	for _, attendee := range allAttendees {
		if attendee.MeetingUID == meetingUID {
			matchingAttendees = append(matchingAttendees, attendee)
		}
	}

	return matchingAttendees, nil
}

// GetByMeetingAndEmail retrieves an attendee by meeting and email.
// Email comparison is case-insensitive.
func (r *NatsAttendeeRepository) GetByMeetingAndEmail(ctx context.Context, meetingUID, email string) (*models.Attendee, error) {
	attendees, err := r.ListByMeeting(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	for _, attendee := range attendees {
		if strings.EqualFold(attendee.Email, email) {
			return attendee, nil
		}
	}

	return nil, domain.NewNotFoundError(fmt.Sprintf("attendee with meeting '%s' and email '%s' not found", meetingUID, email))
}

// ListAll lists all attendees
func (r *NatsAttendeeRepository) ListAll(ctx context.Context) ([]*models.Attendee, error) {
	pattern := KeyPrefixAttendee + "/"
	return r.ListEntitiesEncoded(ctx, pattern, r.keyBuilder)
}

func (r *NatsAttendeeRepository) createIndices(ctx context.Context, attendee *models.Attendee) error {
	// Create meeting index
	meetingIndexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexMeeting, attendee.MeetingUID, attendee.UID)
	if err := r.PutIndex(ctx, meetingIndexKey); err != nil {
		return err
	}

	if attendee.Email != "" {
		// Create email index
		emailIndexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexEmail, attendee.Email, attendee.UID)
		if err := r.PutIndex(ctx, emailIndexKey); err != nil {
			return err
		}
	} else {
		slog.DebugContext(ctx, "skipping email index creation for attendee with empty email", "attendee_uid", attendee.UID)
	}

	return nil
}

func (r *NatsAttendeeRepository) deleteIndices(ctx context.Context, attendee *models.Attendee) error {
	// Delete meeting index
	meetingIndexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexMeeting, attendee.MeetingUID, attendee.UID)
	if err := r.DeleteIndex(ctx, meetingIndexKey); err != nil {
		slog.WarnContext(ctx, "failed to delete meeting index", logging.ErrKey, err)
	}

	if attendee.Email != "" {
		// Delete email index
		emailIndexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexEmail, attendee.Email, attendee.UID)
		if err := r.DeleteIndex(ctx, emailIndexKey); err != nil {
			slog.WarnContext(ctx, "failed to delete email index", logging.ErrKey, err)
		}
	}

	return nil
}
