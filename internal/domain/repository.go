// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
)

// MeetingRepository defines the interface for meeting storage operations.
// This interface can be implemented by different storage backends (NATS, PostgreSQL, etc.)
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	Exists(ctx context.Context, meetingUID string) (bool, error)
	Get(ctx context.Context, meetingUID string) (*models.Meeting, error)
	GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error)
	Update(ctx context.Context, meeting *models.Meeting, revision uint64) error
	Delete(ctx context.Context, meetingUID string, revision uint64) error

	// GetByRemoteID resolves a meeting by its remote platform ID via the
	// index key maintained alongside the record.
	GetByRemoteID(ctx context.Context, remoteID string) (*models.Meeting, error)

	// Bulk operations
	ListAll(ctx context.Context) ([]*models.Meeting, error)
}

// AttendeeRepository defines the interface for attendee storage operations.
type AttendeeRepository interface {
	Create(ctx context.Context, attendee *models.Attendee) error
	Get(ctx context.Context, attendeeUID string) (*models.Attendee, error)
	GetWithRevision(ctx context.Context, attendeeUID string) (*models.Attendee, uint64, error)
	Update(ctx context.Context, attendee *models.Attendee, revision uint64) error
	Delete(ctx context.Context, attendeeUID string, revision uint64) error

	// ListByMeeting returns all attendees of one meeting.
	ListByMeeting(ctx context.Context, meetingUID string) ([]*models.Attendee, error)

	// GetByMeetingAndEmail resolves the attendee with the given email on
	// the given meeting, used for duplicate detection.
	GetByMeetingAndEmail(ctx context.Context, meetingUID, email string) (*models.Attendee, error)
}

// CredentialRepository defines the interface for Zoom credential storage.
// There is one credential record per account; callers address it by UID.
type CredentialRepository interface {
	Save(ctx context.Context, credential *models.Credential) error
	Get(ctx context.Context, credentialUID string) (*models.Credential, error)
	GetWithRevision(ctx context.Context, credentialUID string) (*models.Credential, uint64, error)
	Update(ctx context.Context, credential *models.Credential, revision uint64) error
}
