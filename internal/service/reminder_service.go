// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/pkg/constants"
)

// ReminderService sweeps for meetings about to start and sends reminder
// emails to their confirmed attendees.
type ReminderService struct {
	MeetingRepository  domain.MeetingRepository
	AttendeeRepository domain.AttendeeRepository
	Notifier           NotificationDispatcher
	Config             ServiceConfig

	inFlight atomic.Bool
}

// NewReminderService creates a new ReminderService.
func NewReminderService(
	meetingRepository domain.MeetingRepository,
	attendeeRepository domain.AttendeeRepository,
	notifier NotificationDispatcher,
	config ServiceConfig,
) *ReminderService {
	return &ReminderService{
		MeetingRepository:  meetingRepository,
		AttendeeRepository: attendeeRepository,
		Notifier:           notifier,
		Config:             config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ReminderService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.AttendeeRepository != nil &&
		s.Notifier != nil
}

// RunSweep runs one reminder sweep over the window
// [now+lead, now+lead+width). A meeting gets at most one reminder; the
// sent marker survives restarts because it lives on the record.
func (s *ReminderService) RunSweep(ctx context.Context) (*models.NotifyResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, domain.NewConflictError("a reminder sweep is already in progress")
	}
	defer s.inFlight.Store(false)

	now := time.Now().UTC()
	windowStart := now.Add(constants.ReminderLeadTimeMinutes * time.Minute)
	windowEnd := windowStart.Add(constants.ReminderWindowMinutes * time.Minute)

	meetings, err := s.MeetingRepository.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	total := models.NotifyResult{}
	swept := 0
	for _, meeting := range meetings {
		if meeting.Status != models.MeetingStatusScheduled || meeting.ReminderSentAt != nil {
			continue
		}
		if meeting.StartTime.Before(windowStart) || !meeting.StartTime.Before(windowEnd) {
			continue
		}

		result, err := s.remind(ctx, meeting.UID, now)
		if err != nil {
			slog.ErrorContext(ctx, "reminder failed for meeting", "meeting_uid", meeting.UID, logging.ErrKey, err)
			continue
		}
		total.Sent += result.Sent
		total.Failed += result.Failed
		swept++
	}

	slog.InfoContext(ctx, "reminder sweep finished",
		"meetings", swept,
		"sent", total.Sent,
		"failed", total.Failed,
	)

	return &total, nil
}

// remind sends the reminder for one meeting and stamps the record so the
// next sweep skips it.
func (s *ReminderService) remind(ctx context.Context, meetingUID string, now time.Time) (models.NotifyResult, error) {
	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return models.NotifyResult{}, err
	}
	if meeting.ReminderSentAt != nil {
		return models.NotifyResult{}, nil
	}

	attendees, err := s.AttendeeRepository.ListByMeeting(ctx, meetingUID)
	if err != nil {
		return models.NotifyResult{}, err
	}
	confirmed := make([]*models.Attendee, 0, len(attendees))
	for _, attendee := range attendees {
		if attendee.Status == models.AttendeeStatusConfirmed {
			confirmed = append(confirmed, attendee)
		}
	}

	result := models.NotifyResult{}
	if len(confirmed) > 0 {
		result = s.Notifier.Notify(ctx, models.NotificationReminder, meeting, confirmed)
	}

	// Stamp even when nobody was confirmed so the meeting is not swept
	// again every interval.
	meeting.ReminderSentAt = &now
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		slog.WarnContext(ctx, "failed to stamp reminder on meeting", "meeting_uid", meetingUID, logging.ErrKey, err)
	}

	return result, nil
}
