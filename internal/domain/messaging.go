// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
)

// MeetingEventSender handles meeting lifecycle events.
type MeetingEventSender interface {
	SendMeetingCreated(ctx context.Context, data models.MeetingEventMessage) error
	SendMeetingUpdated(ctx context.Context, data models.MeetingEventMessage) error
	SendMeetingDeleted(ctx context.Context, data models.MeetingEventMessage) error
	SendMeetingStateChanged(ctx context.Context, data models.MeetingEventMessage) error
}

// AttendeeEventSender handles attendee status events.
type AttendeeEventSender interface {
	SendAttendeeUpdated(ctx context.Context, data models.AttendeeEventMessage) error
}

// SyncEventSender handles reconciliation run events.
type SyncEventSender interface {
	SendSyncCompleted(ctx context.Context, data models.SyncEventMessage) error
}

// MessageSender composes all messaging operations of the service.
type MessageSender interface {
	MeetingEventSender
	AttendeeEventSender
	SyncEventSender
}
