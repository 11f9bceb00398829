// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// NotificationDispatcher sends the notification emails tied to attendee
// and meeting events. Implemented by NotificationService.
type NotificationDispatcher interface {
	Notify(ctx context.Context, event models.NotificationEvent, meeting *models.Meeting, attendees []*models.Attendee) models.NotifyResult
}

// AttendeeService implements attendee management for meetings: the RSVP
// state machine and the denormalized attendance stats on the meeting.
type AttendeeService struct {
	MeetingRepository  domain.MeetingRepository
	AttendeeRepository domain.AttendeeRepository
	MessageSender      domain.MessageSender
	Notifier           NotificationDispatcher
	Config             ServiceConfig
}

// NewAttendeeService creates a new AttendeeService.
func NewAttendeeService(
	meetingRepository domain.MeetingRepository,
	attendeeRepository domain.AttendeeRepository,
	messageSender domain.MessageSender,
	notifier NotificationDispatcher,
	config ServiceConfig,
) *AttendeeService {
	return &AttendeeService{
		MeetingRepository:  meetingRepository,
		AttendeeRepository: attendeeRepository,
		MessageSender:      messageSender,
		Notifier:           notifier,
		Config:             config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *AttendeeService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.AttendeeRepository != nil &&
		s.MessageSender != nil &&
		s.Notifier != nil
}

// AddAttendee adds an attendee to a meeting in the invited state and sends
// the invitation email. An attendee with the same email on the same meeting
// is a conflict.
func (s *AttendeeService) AddAttendee(ctx context.Context, attendee *models.Attendee) (*models.Attendee, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if attendee == nil || attendee.MeetingUID == "" {
		return nil, domain.NewValidationError("meeting UID is required")
	}
	if attendee.Email == "" || !strings.Contains(attendee.Email, "@") {
		return nil, domain.NewValidationError("a valid attendee email is required")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", attendee.MeetingUID))

	meeting, err := s.MeetingRepository.Get(ctx, attendee.MeetingUID)
	if err != nil {
		return nil, err
	}
	if meeting.Status == models.MeetingStatusCancelled || meeting.Status == models.MeetingStatusFinished {
		return nil, domain.NewConflictError("attendees cannot be added to a cancelled or finished meeting")
	}

	existing, err := s.AttendeeRepository.GetByMeetingAndEmail(ctx, attendee.MeetingUID, attendee.Email)
	if err != nil && domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewConflictError("attendee with this email already exists on the meeting")
	}

	now := time.Now().UTC()
	attendee.Status = models.AttendeeStatusInvited
	attendee.InvitedAt = &now

	if err := s.AttendeeRepository.Create(ctx, attendee); err != nil {
		return nil, err
	}

	if err := s.recomputeStats(ctx, attendee.MeetingUID); err != nil {
		slog.WarnContext(ctx, "failed to recompute attendance stats", logging.ErrKey, err)
	}

	s.Notifier.Notify(ctx, models.NotificationInvited, meeting, []*models.Attendee{attendee})

	s.publishAttendeeEvent(ctx, models.AttendeeEventMessage{
		AttendeeUID: attendee.UID,
		MeetingUID:  attendee.MeetingUID,
		Email:       attendee.Email,
		Status:      attendee.Status,
		OccurredAt:  now,
	})

	slog.InfoContext(ctx, "added attendee", "attendee_uid", attendee.UID, "email", attendee.Email)

	return attendee, nil
}

// ConfirmAttendance moves the attendee to confirmed and notifies the host.
func (s *AttendeeService) ConfirmAttendance(ctx context.Context, attendeeUID string) (*models.Attendee, error) {
	attendee, err := s.transition(ctx, attendeeUID, models.AttendeeStatusConfirmed)
	if err != nil {
		return nil, err
	}

	meeting, err := s.MeetingRepository.Get(ctx, attendee.MeetingUID)
	if err == nil && meeting.HostEmail != "" {
		s.Notifier.Notify(ctx, models.NotificationConfirmed, meeting, []*models.Attendee{attendee})
	}

	return attendee, nil
}

// Decline moves the attendee to declined.
func (s *AttendeeService) Decline(ctx context.Context, attendeeUID string) (*models.Attendee, error) {
	return s.transition(ctx, attendeeUID, models.AttendeeStatusDeclined)
}

// MarkAttended moves the attendee to attended. Only confirmed attendees
// qualify; the state machine rejects everything else.
func (s *AttendeeService) MarkAttended(ctx context.Context, attendeeUID string) (*models.Attendee, error) {
	return s.transition(ctx, attendeeUID, models.AttendeeStatusAttended)
}

// MarkNoShow moves the attendee to no_show.
func (s *AttendeeService) MarkNoShow(ctx context.Context, attendeeUID string) (*models.Attendee, error) {
	return s.transition(ctx, attendeeUID, models.AttendeeStatusNoShow)
}

// RemoveAttendee deletes the attendee and recomputes the meeting stats.
func (s *AttendeeService) RemoveAttendee(ctx context.Context, attendeeUID string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.NewUnavailableError("service not initialized")
	}

	attendee, revision, err := s.AttendeeRepository.GetWithRevision(ctx, attendeeUID)
	if err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", attendee.MeetingUID))

	if err := s.AttendeeRepository.Delete(ctx, attendeeUID, revision); err != nil {
		return err
	}

	if err := s.recomputeStats(ctx, attendee.MeetingUID); err != nil {
		slog.WarnContext(ctx, "failed to recompute attendance stats", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "removed attendee", "attendee_uid", attendeeUID, "email", attendee.Email)

	return nil
}

// GetAttendee fetches one attendee by UID.
func (s *AttendeeService) GetAttendee(ctx context.Context, attendeeUID string) (*models.Attendee, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	return s.AttendeeRepository.Get(ctx, attendeeUID)
}

// ListAttendees fetches all attendees of a meeting.
func (s *AttendeeService) ListAttendees(ctx context.Context, meetingUID string) ([]*models.Attendee, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if _, err := s.MeetingRepository.Get(ctx, meetingUID); err != nil {
		return nil, err
	}
	return s.AttendeeRepository.ListByMeeting(ctx, meetingUID)
}

// transition applies one RSVP state change under the attendance state
// machine, persists it, recomputes the stats and publishes the event.
func (s *AttendeeService) transition(ctx context.Context, attendeeUID string, next models.AttendeeStatus) (*models.Attendee, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	attendee, revision, err := s.AttendeeRepository.GetWithRevision(ctx, attendeeUID)
	if err != nil {
		return nil, err
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", attendee.MeetingUID))

	if attendee.Status == next {
		return attendee, nil
	}
	if !attendee.CanTransitionTo(next) {
		return nil, domain.NewConflictError("attendee cannot move from '" + string(attendee.Status) + "' to '" + string(next) + "'")
	}

	now := time.Now().UTC()
	attendee.Status = next
	if next == models.AttendeeStatusConfirmed || next == models.AttendeeStatusDeclined {
		attendee.RespondedAt = &now
	}

	if err := s.AttendeeRepository.Update(ctx, attendee, revision); err != nil {
		return nil, err
	}

	if err := s.recomputeStats(ctx, attendee.MeetingUID); err != nil {
		slog.WarnContext(ctx, "failed to recompute attendance stats", logging.ErrKey, err)
	}

	s.publishAttendeeEvent(ctx, models.AttendeeEventMessage{
		AttendeeUID: attendee.UID,
		MeetingUID:  attendee.MeetingUID,
		Email:       attendee.Email,
		Status:      attendee.Status,
		OccurredAt:  now,
	})

	return attendee, nil
}

// recomputeStats rebuilds the denormalized counters on the meeting record
// from the current attendee set. Attendees who already attended still count
// as confirmed, so the attendance rate is stable across the meeting.
func (s *AttendeeService) recomputeStats(ctx context.Context, meetingUID string) error {
	attendees, err := s.AttendeeRepository.ListByMeeting(ctx, meetingUID)
	if err != nil {
		return err
	}

	stats := models.AttendanceStats{Invited: len(attendees)}
	for _, attendee := range attendees {
		switch attendee.Status {
		case models.AttendeeStatusConfirmed:
			stats.Confirmed++
		case models.AttendeeStatusDeclined:
			stats.Declined++
		case models.AttendeeStatusAttended:
			stats.Confirmed++
			stats.Attended++
		case models.AttendeeStatusNoShow:
			stats.NoShow++
		}
	}
	if stats.Invited > 0 {
		stats.Rate = float64(stats.Confirmed) / float64(stats.Invited) * 100
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}
	meeting.Stats = stats

	return s.MeetingRepository.Update(ctx, meeting, revision)
}

func (s *AttendeeService) publishAttendeeEvent(ctx context.Context, msg models.AttendeeEventMessage) {
	if err := s.MessageSender.SendAttendeeUpdated(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish attendee event", logging.ErrKey, err)
	}
}
