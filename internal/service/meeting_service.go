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
	"github.com/crmsuite/zoom-sync-service/pkg/constants"
)

// MeetingService implements the user-triggered meeting operations. Every
// mutation is pushed to the remote platform synchronously; the local record
// is the source of truth for CRM-only fields.
type MeetingService struct {
	MeetingRepository    domain.MeetingRepository
	AttendeeRepository   domain.AttendeeRepository
	CredentialRepository domain.CredentialRepository
	Gateway              domain.MeetingGateway
	MessageSender        domain.MessageSender
	Config               ServiceConfig
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(
	meetingRepository domain.MeetingRepository,
	attendeeRepository domain.AttendeeRepository,
	credentialRepository domain.CredentialRepository,
	gateway domain.MeetingGateway,
	messageSender domain.MessageSender,
	config ServiceConfig,
) *MeetingService {
	return &MeetingService{
		MeetingRepository:    meetingRepository,
		AttendeeRepository:   attendeeRepository,
		CredentialRepository: credentialRepository,
		Gateway:              gateway,
		MessageSender:        messageSender,
		Config:               config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.AttendeeRepository != nil &&
		s.CredentialRepository != nil &&
		s.Gateway != nil &&
		s.MessageSender != nil
}

func (s *MeetingService) validateCreateMeetingPayload(ctx context.Context, meeting *models.Meeting) error {
	if meeting == nil {
		return domain.NewValidationError("meeting payload is required")
	}
	if meeting.Topic == "" {
		return domain.NewValidationError("meeting topic is required")
	}
	if meeting.Duration < 0 || meeting.Duration > constants.MaxMeetingDurationMinutes {
		return domain.NewValidationError("meeting duration is out of range")
	}
	if meeting.Type != models.MeetingTypeInstant {
		if meeting.StartTime.IsZero() {
			return domain.NewValidationError("start time is required for scheduled meetings")
		}
		if meeting.StartTime.Before(time.Now().UTC()) {
			slog.WarnContext(ctx, "start time cannot be in the past", "start_time", meeting.StartTime)
			return domain.NewValidationError("start time cannot be in the past")
		}
	}
	return nil
}

// CreateMeeting creates a meeting locally and on the remote platform. The
// local record is written first so a remote failure never loses the CRM
// side; in that case the record stays unlinked and the error is returned.
func (s *MeetingService) CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	if err := s.validateCreateMeetingPayload(ctx, meeting); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	meeting.Status = models.MeetingStatusScheduled
	if meeting.Type == models.MeetingTypeInstant {
		meeting.Status = models.MeetingStatusActive
		meeting.StartTime = now
		meeting.ActualStart = &meeting.StartTime
	}

	// A request without settings picks up the account defaults.
	if meeting.Settings == (models.MeetingSettings{}) {
		if credential, err := s.CredentialRepository.Get(ctx, CredentialUID); err == nil {
			meeting.Settings = models.MeetingSettings(credential.Defaults)
		} else if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "could not load account meeting defaults", logging.ErrKey, err)
		}
	}

	if err := s.MeetingRepository.Create(ctx, meeting); err != nil {
		return nil, err
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	remote, err := s.Gateway.CreateMeeting(ctx, meeting)
	metrics.RecordZoomAPICall("create_meeting", err == nil)
	if err != nil {
		slog.ErrorContext(ctx, "remote meeting creation failed, record left unlinked", logging.ErrKey, err)
		return nil, err
	}

	stored, revision, getErr := s.MeetingRepository.GetWithRevision(ctx, meeting.UID)
	if getErr != nil {
		return nil, getErr
	}
	stored.RemoteID = remote.ID
	stored.RemoteUUID = remote.UUID
	stored.JoinURL = remote.JoinURL
	stored.StartURL = remote.StartURL
	stored.Password = remote.Password
	stored.HostEmail = remote.HostEmail
	stored.LastSyncedAt = &now
	if err := s.MeetingRepository.Update(ctx, stored, revision); err != nil {
		return nil, err
	}

	s.publishMeetingEvent(ctx, s.MessageSender.SendMeetingCreated, models.MeetingEventMessage{
		MeetingUID: stored.UID,
		RemoteID:   stored.RemoteID,
		Topic:      stored.Topic,
		Status:     stored.Status,
		OccurredAt: now,
	})

	slog.InfoContext(ctx, "created meeting", "remote_id", stored.RemoteID, "topic", stored.Topic)

	return stored, nil
}

// GetMeeting fetches one meeting by UID.
func (s *MeetingService) GetMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	return s.MeetingRepository.Get(ctx, meetingUID)
}

// ListMeetings fetches all meetings.
func (s *MeetingService) ListMeetings(ctx context.Context) ([]*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	return s.MeetingRepository.ListAll(ctx)
}

// GetDashboardStats aggregates meeting counters for the CRM dashboard.
// The connection fields are left for the caller to fill in from the
// stored credential.
func (s *MeetingService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	meetings, err := s.MeetingRepository.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{TotalMeetings: len(meetings)}
	for _, meeting := range meetings {
		switch meeting.Status {
		case models.MeetingStatusScheduled:
			stats.ScheduledMeetings++
		case models.MeetingStatusActive:
			stats.ActiveMeetings++
		case models.MeetingStatusFinished:
			stats.FinishedMeetings++
		case models.MeetingStatusCancelled:
			stats.CancelledMeetings++
		}
		if meeting.LastSyncedAt != nil &&
			(stats.LastSyncedAt == nil || meeting.LastSyncedAt.After(*stats.LastSyncedAt)) {
			stats.LastSyncedAt = meeting.LastSyncedAt
		}
	}

	return stats, nil
}

// UpdateMeeting applies the caller's changes to the stored record under a
// revision guard and pushes them to the remote meeting when linked.
func (s *MeetingService) UpdateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if meeting == nil || meeting.UID == "" {
		return nil, domain.NewValidationError("meeting UID is required")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	stored, revision, err := s.MeetingRepository.GetWithRevision(ctx, meeting.UID)
	if err != nil {
		return nil, err
	}
	if stored.Status == models.MeetingStatusCancelled || stored.Status == models.MeetingStatusFinished {
		return nil, domain.NewConflictError("meeting can no longer be updated")
	}

	if meeting.Topic != "" {
		stored.Topic = meeting.Topic
	}
	stored.Agenda = meeting.Agenda
	if !meeting.StartTime.IsZero() {
		stored.StartTime = meeting.StartTime
	}
	if meeting.Duration > 0 {
		if meeting.Duration > constants.MaxMeetingDurationMinutes {
			return nil, domain.NewValidationError("meeting duration is out of range")
		}
		stored.Duration = meeting.Duration
	}
	if meeting.Timezone != "" {
		stored.Timezone = meeting.Timezone
	}
	stored.Settings = meeting.Settings
	stored.LinkedEntity = meeting.LinkedEntity
	stored.Notes = meeting.Notes

	if err := s.MeetingRepository.Update(ctx, stored, revision); err != nil {
		return nil, err
	}

	if stored.IsLinked() {
		err := s.Gateway.UpdateMeeting(ctx, stored)
		metrics.RecordZoomAPICall("update_meeting", err == nil)
		if err != nil {
			slog.ErrorContext(ctx, "remote meeting update failed", logging.ErrKey, err)
			return nil, err
		}
	}

	s.publishMeetingEvent(ctx, s.MessageSender.SendMeetingUpdated, models.MeetingEventMessage{
		MeetingUID: stored.UID,
		RemoteID:   stored.RemoteID,
		Topic:      stored.Topic,
		Status:     stored.Status,
		OccurredAt: time.Now().UTC(),
	})

	return stored, nil
}

// CancelMeeting cancels the meeting. The remote delete is best-effort: a
// meeting already gone on the platform, or an unreachable platform, never
// blocks the local cancellation.
func (s *MeetingService) CancelMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	stored, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	if stored.Status == models.MeetingStatusCancelled {
		return stored, nil
	}
	if stored.Status == models.MeetingStatusFinished {
		return nil, domain.NewConflictError("finished meetings cannot be cancelled")
	}

	if stored.IsLinked() {
		err := s.Gateway.DeleteMeeting(ctx, stored.RemoteID)
		metrics.RecordZoomAPICall("delete_meeting", err == nil)
		if err != nil {
			slog.WarnContext(ctx, "remote meeting delete failed, cancelling locally anyway", logging.ErrKey, err)
		}
	}

	prevStatus := stored.Status
	stored.Status = models.MeetingStatusCancelled
	if err := s.MeetingRepository.Update(ctx, stored, revision); err != nil {
		return nil, err
	}

	s.publishMeetingEvent(ctx, s.MessageSender.SendMeetingStateChanged, models.MeetingEventMessage{
		MeetingUID: stored.UID,
		RemoteID:   stored.RemoteID,
		Topic:      stored.Topic,
		Status:     stored.Status,
		PrevStatus: prevStatus,
		OccurredAt: time.Now().UTC(),
	})

	slog.InfoContext(ctx, "cancelled meeting", "topic", stored.Topic)

	return stored, nil
}

// DeleteMeeting removes the meeting record and its attendees. The remote
// meeting is deleted best-effort first.
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingUID string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("service not initialized")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	stored, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	if stored.IsLinked() && stored.Status != models.MeetingStatusCancelled {
		err := s.Gateway.DeleteMeeting(ctx, stored.RemoteID)
		metrics.RecordZoomAPICall("delete_meeting", err == nil)
		if err != nil {
			slog.WarnContext(ctx, "remote meeting delete failed, deleting locally anyway", logging.ErrKey, err)
		}
	}

	attendees, err := s.AttendeeRepository.ListByMeeting(ctx, meetingUID)
	if err != nil {
		return err
	}
	for _, attendee := range attendees {
		_, attendeeRevision, err := s.AttendeeRepository.GetWithRevision(ctx, attendee.UID)
		if err != nil {
			slog.WarnContext(ctx, "skipping attendee during cascade delete", "attendee_uid", attendee.UID, logging.ErrKey, err)
			continue
		}
		if err := s.AttendeeRepository.Delete(ctx, attendee.UID, attendeeRevision); err != nil {
			slog.WarnContext(ctx, "failed to delete attendee during cascade delete", "attendee_uid", attendee.UID, logging.ErrKey, err)
		}
	}

	if err := s.MeetingRepository.Delete(ctx, meetingUID, revision); err != nil {
		return err
	}

	s.publishMeetingEvent(ctx, s.MessageSender.SendMeetingDeleted, models.MeetingEventMessage{
		MeetingUID: stored.UID,
		RemoteID:   stored.RemoteID,
		Topic:      stored.Topic,
		OccurredAt: time.Now().UTC(),
	})

	slog.InfoContext(ctx, "deleted meeting", "topic", stored.Topic, "attendees_removed", len(attendees))

	return nil
}

// StartMeeting flips a scheduled meeting to active and records the actual
// start time. It requires a start URL so the caller can actually open the
// host session.
func (s *MeetingService) StartMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	stored, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	if stored.Status != models.MeetingStatusScheduled {
		return nil, domain.NewConflictError("only scheduled meetings can be started")
	}
	if stored.StartURL == "" {
		return nil, domain.NewValidationError("meeting has no start URL")
	}

	now := time.Now().UTC()
	prevStatus := stored.Status
	stored.Status = models.MeetingStatusActive
	stored.ActualStart = &now

	if err := s.MeetingRepository.Update(ctx, stored, revision); err != nil {
		return nil, err
	}

	s.publishMeetingEvent(ctx, s.MessageSender.SendMeetingStateChanged, models.MeetingEventMessage{
		MeetingUID: stored.UID,
		RemoteID:   stored.RemoteID,
		Topic:      stored.Topic,
		Status:     stored.Status,
		PrevStatus: prevStatus,
		OccurredAt: now,
	})

	return stored, nil
}

// EndMeeting flips an active meeting to finished, records the actual end
// time, and recomputes the real duration from the actual times.
func (s *MeetingService) EndMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	stored, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	if stored.Status != models.MeetingStatusActive {
		return nil, domain.NewConflictError("only active meetings can be ended")
	}

	now := time.Now().UTC()
	prevStatus := stored.Status
	stored.Status = models.MeetingStatusFinished
	stored.ActualEnd = &now
	if stored.ActualStart != nil {
		minutes := int(now.Sub(*stored.ActualStart).Round(time.Minute) / time.Minute)
		if minutes > 0 {
			stored.Duration = minutes
		}
	}

	if err := s.MeetingRepository.Update(ctx, stored, revision); err != nil {
		return nil, err
	}

	s.publishMeetingEvent(ctx, s.MessageSender.SendMeetingStateChanged, models.MeetingEventMessage{
		MeetingUID: stored.UID,
		RemoteID:   stored.RemoteID,
		Topic:      stored.Topic,
		Status:     stored.Status,
		PrevStatus: prevStatus,
		OccurredAt: now,
	})

	return stored, nil
}

// publishMeetingEvent publishes fire-and-forget; a NATS failure is logged
// and never fails the operation that triggered it.
func (s *MeetingService) publishMeetingEvent(ctx context.Context, send func(context.Context, models.MeetingEventMessage) error, msg models.MeetingEventMessage) {
	if err := send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish meeting event", logging.ErrKey, err)
	}
}
