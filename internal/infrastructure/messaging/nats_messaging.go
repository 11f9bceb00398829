// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// INatsConn is the NATS connection interface needed by the [MessageBuilder].
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds event messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// Ensure MessageBuilder implements domain.MessageSender
var _ domain.MessageSender = (*MessageBuilder)(nil)

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// sendJSONMessage marshals the payload and sends it on the given subject.
func (m *MessageBuilder) sendJSONMessage(ctx context.Context, subject string, payload any) error {
	dataBytes, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	return m.sendMessage(ctx, subject, dataBytes)
}

// SendMeetingCreated sends a message about a meeting being created.
func (m *MessageBuilder) SendMeetingCreated(ctx context.Context, data models.MeetingEventMessage) error {
	return m.sendJSONMessage(ctx, models.MeetingCreatedSubject, data)
}

// SendMeetingUpdated sends a message about a meeting being updated.
func (m *MessageBuilder) SendMeetingUpdated(ctx context.Context, data models.MeetingEventMessage) error {
	return m.sendJSONMessage(ctx, models.MeetingUpdatedSubject, data)
}

// SendMeetingDeleted sends a message about a meeting being deleted so CRM
// consumers can clean up their references.
func (m *MessageBuilder) SendMeetingDeleted(ctx context.Context, data models.MeetingEventMessage) error {
	return m.sendJSONMessage(ctx, models.MeetingDeletedSubject, data)
}

// SendMeetingStateChanged sends a message about a meeting lifecycle transition.
func (m *MessageBuilder) SendMeetingStateChanged(ctx context.Context, data models.MeetingEventMessage) error {
	return m.sendJSONMessage(ctx, models.MeetingStateChangedSubject, data)
}

// SendAttendeeUpdated sends a message about an attendee status change.
func (m *MessageBuilder) SendAttendeeUpdated(ctx context.Context, data models.AttendeeEventMessage) error {
	return m.sendJSONMessage(ctx, models.AttendeeUpdatedSubject, data)
}

// SendSyncCompleted sends the results of a reconciliation run.
func (m *MessageBuilder) SendSyncCompleted(ctx context.Context, data models.SyncEventMessage) error {
	return m.sendJSONMessage(ctx, models.SyncCompletedSubject, data)
}
