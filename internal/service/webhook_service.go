// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/zoom/webhook"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/internal/metrics"
)

// WebhookService turns validated Zoom webhook events into the same local
// state updates the pull sync would make, just sooner.
type WebhookService struct {
	MeetingRepository  domain.MeetingRepository
	AttendeeRepository domain.AttendeeRepository
	MessageSender      domain.MessageSender
	Notifier           *NotificationService
	Validator          webhook.Validator
	Config             ServiceConfig
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(
	meetingRepository domain.MeetingRepository,
	attendeeRepository domain.AttendeeRepository,
	messageSender domain.MessageSender,
	notifier *NotificationService,
	validator webhook.Validator,
	config ServiceConfig,
) *WebhookService {
	return &WebhookService{
		MeetingRepository:  meetingRepository,
		AttendeeRepository: attendeeRepository,
		MessageSender:      messageSender,
		Notifier:           notifier,
		Validator:          validator,
		Config:             config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *WebhookService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.AttendeeRepository != nil &&
		s.MessageSender != nil &&
		s.Notifier != nil &&
		s.Validator != nil
}

// ValidateSignature checks the request signature before any payload is
// trusted.
func (s *WebhookService) ValidateSignature(body []byte, signature, timestamp string) error {
	if s.Validator == nil {
		return domain.NewUnavailableError("webhook validator not configured")
	}
	if err := s.Validator.ValidateSignature(body, signature, timestamp); err != nil {
		return domain.NewAuthenticationError("invalid webhook signature", err)
	}
	return nil
}

// HandleURLValidation answers the endpoint.url_validation challenge.
func (s *WebhookService) HandleURLValidation(ctx context.Context, event *models.ZoomWebhookEvent) (*models.ZoomURLValidationResponse, error) {
	var payload models.ZoomURLValidationPayload
	if err := event.ParsePayload(&payload); err != nil {
		return nil, domain.NewValidationError("invalid url_validation payload", err)
	}

	metrics.RecordWebhookEvent(event.Event, "handled")
	slog.DebugContext(ctx, "answering webhook url validation challenge")

	return &models.ZoomURLValidationResponse{
		PlainToken:     payload.PlainToken,
		EncryptedToken: s.Validator.EncryptToken(payload.PlainToken),
	}, nil
}

// HandleEvent routes one webhook event. Events for meetings this service
// does not know are ignored, not errors: the Zoom account may host
// meetings the CRM never sees.
func (s *WebhookService) HandleEvent(ctx context.Context, event *models.ZoomWebhookEvent) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("service not initialized")
	}
	ctx = logging.AppendCtx(ctx, slog.String("webhook_event", event.Event))

	var err error
	switch event.Event {
	case models.ZoomEventMeetingStarted:
		err = s.handleMeetingStarted(ctx, event)
	case models.ZoomEventMeetingEnded:
		err = s.handleMeetingEnded(ctx, event)
	case models.ZoomEventMeetingUpdated:
		err = s.handleMeetingUpdated(ctx, event)
	case models.ZoomEventMeetingDeleted:
		err = s.handleMeetingDeleted(ctx, event)
	case models.ZoomEventParticipantJoined:
		err = s.handleParticipantJoined(ctx, event)
	case models.ZoomEventParticipantLeft:
		err = s.handleParticipantLeft(ctx, event)
	case models.ZoomEventRecordingCompleted:
		err = s.handleRecordingCompleted(ctx, event)
	case models.ZoomEventSummaryCompleted:
		err = s.handleSummaryCompleted(ctx, event)
	default:
		slog.DebugContext(ctx, "ignoring unsupported webhook event")
		metrics.RecordWebhookEvent(event.Event, "ignored")
		return nil
	}

	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.DebugContext(ctx, "webhook event for unknown meeting, ignoring")
			metrics.RecordWebhookEvent(event.Event, "ignored")
			return nil
		}
		metrics.RecordWebhookEvent(event.Event, "invalid")
		return err
	}

	metrics.RecordWebhookEvent(event.Event, "handled")
	return nil
}

func (s *WebhookService) handleMeetingStarted(ctx context.Context, event *models.ZoomWebhookEvent) error {
	var payload models.ZoomMeetingStartedPayload
	if err := event.ParsePayload(&payload); err != nil {
		return domain.NewValidationError("invalid meeting.started payload", err)
	}

	now := time.Now().UTC()
	return s.updateMeetingState(ctx, payload.Object.ID, func(meeting *models.Meeting) bool {
		if meeting.Status == models.MeetingStatusActive {
			return false
		}
		meeting.Status = models.MeetingStatusActive
		if meeting.ActualStart == nil {
			meeting.ActualStart = &now
		}
		return true
	})
}

func (s *WebhookService) handleMeetingEnded(ctx context.Context, event *models.ZoomWebhookEvent) error {
	var payload models.ZoomMeetingEndedPayload
	if err := event.ParsePayload(&payload); err != nil {
		return domain.NewValidationError("invalid meeting.ended payload", err)
	}

	endTime := payload.Object.EndTime
	if endTime.IsZero() {
		endTime = time.Now().UTC()
	}
	return s.updateMeetingState(ctx, payload.Object.ID, func(meeting *models.Meeting) bool {
		if meeting.Status == models.MeetingStatusFinished {
			return false
		}
		meeting.Status = models.MeetingStatusFinished
		meeting.ActualEnd = &endTime
		if meeting.ActualStart == nil && !payload.Object.StartTime.IsZero() {
			startTime := payload.Object.StartTime
			meeting.ActualStart = &startTime
		}
		if meeting.ActualStart != nil {
			minutes := int(endTime.Sub(*meeting.ActualStart).Round(time.Minute) / time.Minute)
			if minutes > 0 {
				meeting.Duration = minutes
			}
		}
		return true
	})
}

func (s *WebhookService) handleMeetingUpdated(ctx context.Context, event *models.ZoomWebhookEvent) error {
	var payload models.ZoomMeetingUpdatedPayload
	if err := event.ParsePayload(&payload); err != nil {
		return domain.NewValidationError("invalid meeting.updated payload", err)
	}

	meeting, revision, err := s.getByRemoteID(ctx, payload.Object.ID)
	if err != nil {
		return err
	}

	changed := false
	if payload.Object.Topic != "" && payload.Object.Topic != meeting.Topic {
		meeting.Topic = payload.Object.Topic
		changed = true
	}
	if payload.Object.StartTime != nil && !payload.Object.StartTime.Equal(meeting.StartTime) {
		meeting.StartTime = *payload.Object.StartTime
		changed = true
	}
	if payload.Object.Duration != nil && *payload.Object.Duration != meeting.Duration {
		meeting.Duration = *payload.Object.Duration
		changed = true
	}
	if payload.Object.Timezone != "" && payload.Object.Timezone != meeting.Timezone {
		meeting.Timezone = payload.Object.Timezone
		changed = true
	}
	if payload.Object.Agenda != nil && *payload.Object.Agenda != meeting.Agenda {
		meeting.Agenda = *payload.Object.Agenda
		changed = true
	}
	if !changed {
		return nil
	}

	now := time.Now().UTC()
	meeting.LastSyncedAt = &now
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return err
	}

	if err := s.MessageSender.SendMeetingUpdated(ctx, models.MeetingEventMessage{
		MeetingUID: meeting.UID,
		RemoteID:   meeting.RemoteID,
		Topic:      meeting.Topic,
		Status:     meeting.Status,
		OccurredAt: now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish meeting event", logging.ErrKey, err)
	}

	return nil
}

func (s *WebhookService) handleMeetingDeleted(ctx context.Context, event *models.ZoomWebhookEvent) error {
	var payload models.ZoomMeetingDeletedPayload
	if err := event.ParsePayload(&payload); err != nil {
		return domain.NewValidationError("invalid meeting.deleted payload", err)
	}

	return s.updateMeetingState(ctx, payload.Object.ID, func(meeting *models.Meeting) bool {
		if meeting.Status == models.MeetingStatusCancelled || meeting.Status == models.MeetingStatusFinished {
			return false
		}
		meeting.Status = models.MeetingStatusCancelled
		return true
	})
}

func (s *WebhookService) handleParticipantJoined(ctx context.Context, event *models.ZoomWebhookEvent) error {
	var payload models.ZoomParticipantJoinedPayload
	if err := event.ParsePayload(&payload); err != nil {
		return domain.NewValidationError("invalid participant_joined payload", err)
	}

	meeting, _, err := s.getByRemoteID(ctx, payload.Object.ID)
	if err != nil {
		return err
	}

	attendee, err := s.AttendeeRepository.GetByMeetingAndEmail(ctx, meeting.UID, payload.Object.Participant.Email)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.DebugContext(ctx, "participant joined without an attendee record",
				"email", payload.Object.Participant.Email,
			)
			return nil
		}
		return err
	}

	current, revision, err := s.AttendeeRepository.GetWithRevision(ctx, attendee.UID)
	if err != nil {
		return err
	}
	if !current.CanTransitionTo(models.AttendeeStatusAttended) {
		return nil
	}

	current.Status = models.AttendeeStatusAttended
	joinTime := payload.Object.Participant.JoinTime
	if joinTime.IsZero() {
		joinTime = time.Now().UTC()
	}
	current.JoinedAt = &joinTime

	return s.AttendeeRepository.Update(ctx, current, revision)
}

func (s *WebhookService) handleParticipantLeft(ctx context.Context, event *models.ZoomWebhookEvent) error {
	var payload models.ZoomParticipantLeftPayload
	if err := event.ParsePayload(&payload); err != nil {
		return domain.NewValidationError("invalid participant_left payload", err)
	}

	meeting, _, err := s.getByRemoteID(ctx, payload.Object.ID)
	if err != nil {
		return err
	}

	attendee, err := s.AttendeeRepository.GetByMeetingAndEmail(ctx, meeting.UID, payload.Object.Participant.Email)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil
		}
		return err
	}

	current, revision, err := s.AttendeeRepository.GetWithRevision(ctx, attendee.UID)
	if err != nil {
		return err
	}

	leaveTime := payload.Object.Participant.LeaveTime
	if leaveTime.IsZero() {
		leaveTime = time.Now().UTC()
	}
	current.LeftAt = &leaveTime
	if payload.Object.Participant.Duration > 0 {
		current.DurationMinutes = (payload.Object.Participant.Duration + 59) / 60
	}

	return s.AttendeeRepository.Update(ctx, current, revision)
}

func (s *WebhookService) handleRecordingCompleted(ctx context.Context, event *models.ZoomWebhookEvent) error {
	var payload models.ZoomRecordingCompletedPayload
	if err := event.ParsePayload(&payload); err != nil {
		return domain.NewValidationError("invalid recording.completed payload", err)
	}

	meeting, revision, err := s.getByRemoteID(ctx, remoteIDString(payload.Object.ID))
	if err != nil {
		return err
	}

	if payload.Object.ShareURL != "" {
		meeting.RecordingURL = payload.Object.ShareURL
	}
	for _, file := range payload.Object.RecordingFiles {
		if file.FileType == "MP4" && file.PlayURL != "" {
			meeting.RecordingPlayURL = file.PlayURL
			break
		}
	}

	return s.MeetingRepository.Update(ctx, meeting, revision)
}

func (s *WebhookService) handleSummaryCompleted(ctx context.Context, event *models.ZoomWebhookEvent) error {
	var payload models.ZoomSummaryCompletedPayload
	if err := event.ParsePayload(&payload); err != nil {
		return domain.NewValidationError("invalid summary_completed payload", err)
	}

	meeting, _, err := s.getByRemoteID(ctx, remoteIDString(payload.Object.ID))
	if err != nil {
		return err
	}

	attendees, err := s.AttendeeRepository.ListByMeeting(ctx, meeting.UID)
	if err != nil {
		return err
	}
	recipients := make([]*models.Attendee, 0, len(attendees))
	for _, attendee := range attendees {
		if attendee.Status == models.AttendeeStatusAttended || attendee.Status == models.AttendeeStatusConfirmed {
			recipients = append(recipients, attendee)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	result := s.Notifier.NotifySummary(ctx, meeting, recipients,
		payload.Object.Summary.KeyPoints,
		payload.Object.Summary.NextSteps,
	)
	slog.InfoContext(ctx, "sent meeting summary notifications",
		"meeting_uid", meeting.UID,
		"sent", result.Sent,
		"failed", result.Failed,
	)

	return nil
}

// updateMeetingState loads the meeting by remote ID, applies the mutation,
// and publishes the state change when the mutation reports one.
func (s *WebhookService) updateMeetingState(ctx context.Context, remoteID string, mutate func(*models.Meeting) bool) error {
	meeting, revision, err := s.getByRemoteID(ctx, remoteID)
	if err != nil {
		return err
	}

	prevStatus := meeting.Status
	if !mutate(meeting) {
		return nil
	}

	now := time.Now().UTC()
	meeting.LastSyncedAt = &now
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return err
	}

	if meeting.Status != prevStatus {
		if err := s.MessageSender.SendMeetingStateChanged(ctx, models.MeetingEventMessage{
			MeetingUID: meeting.UID,
			RemoteID:   meeting.RemoteID,
			Topic:      meeting.Topic,
			Status:     meeting.Status,
			PrevStatus: prevStatus,
			OccurredAt: now,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish meeting event", logging.ErrKey, err)
		}
	}

	slog.InfoContext(ctx, "applied webhook state update",
		"meeting_uid", meeting.UID,
		"status", string(meeting.Status),
	)

	return nil
}

func (s *WebhookService) getByRemoteID(ctx context.Context, remoteID string) (*models.Meeting, uint64, error) {
	if strings.TrimSpace(remoteID) == "" {
		return nil, 0, domain.NewValidationError("webhook payload has no meeting ID")
	}
	meeting, err := s.MeetingRepository.GetByRemoteID(ctx, remoteID)
	if err != nil {
		return nil, 0, err
	}
	return s.MeetingRepository.GetWithRevision(ctx, meeting.UID)
}

func remoteIDString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
