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
	"github.com/crmsuite/zoom-sync-service/pkg/concurrent"
)

// notifyWorkerCount bounds how many emails go out concurrently.
const notifyWorkerCount = 5

// NotificationService fans notification emails out to recipients. Each
// recipient is isolated: one failed send never blocks the others, and
// failures only surface in the returned counts.
type NotificationService struct {
	EmailService domain.EmailService
	Config       ServiceConfig

	pool *concurrent.WorkerPool
}

// Ensure NotificationService implements NotificationDispatcher
var _ NotificationDispatcher = (*NotificationService)(nil)

// NewNotificationService creates a new NotificationService.
func NewNotificationService(emailService domain.EmailService, config ServiceConfig) *NotificationService {
	return &NotificationService{
		EmailService: emailService,
		Config:       config,
		pool:         concurrent.NewWorkerPool(notifyWorkerCount),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *NotificationService) ServiceReady() bool {
	return s.EmailService != nil
}

// Notify sends the email for the given event to the given attendees. The
// confirmed event goes to the meeting host about the first attendee; all
// other events go to the attendees themselves.
func (s *NotificationService) Notify(ctx context.Context, event models.NotificationEvent, meeting *models.Meeting, attendees []*models.Attendee) models.NotifyResult {
	if !s.ServiceReady() || meeting == nil || len(attendees) == 0 {
		return models.NotifyResult{}
	}
	if !s.Config.EmailEnabled {
		slog.DebugContext(ctx, "email notifications disabled", "event", string(event))
		return models.NotifyResult{}
	}

	sends := make([]func() error, 0, len(attendees))
	switch event {
	case models.NotificationInvited:
		for _, attendee := range attendees {
			sends = append(sends, func() error {
				return s.EmailService.SendInvitation(ctx, s.buildInvitation(meeting, attendee))
			})
		}
	case models.NotificationReminder:
		minutesUntil := int(time.Until(meeting.StartTime).Round(time.Minute) / time.Minute)
		for _, attendee := range attendees {
			sends = append(sends, func() error {
				return s.EmailService.SendReminder(ctx, domain.EmailReminder{
					RecipientEmail: attendee.Email,
					RecipientName:  attendee.DisplayName(),
					MeetingTopic:   meeting.Topic,
					StartTime:      meeting.StartTime,
					Duration:       meeting.DurationOrDefault(),
					Timezone:       meeting.Timezone,
					JoinLink:       meeting.JoinURL,
					MinutesUntil:   minutesUntil,
				})
			})
		}
	case models.NotificationConfirmed:
		if meeting.HostEmail == "" {
			return models.NotifyResult{}
		}
		attendee := attendees[0]
		sends = append(sends, func() error {
			return s.EmailService.SendHostConfirmation(ctx, domain.EmailHostConfirmation{
				RecipientEmail: meeting.HostEmail,
				AttendeeName:   attendee.DisplayName(),
				AttendeeEmail:  attendee.Email,
				MeetingTopic:   meeting.Topic,
				StartTime:      meeting.StartTime,
				Timezone:       meeting.Timezone,
			})
		})
	case models.NotificationSummaryReady:
		return s.NotifySummary(ctx, meeting, attendees, nil, nil)
	default:
		slog.WarnContext(ctx, "unknown notification event", "event", string(event))
		return models.NotifyResult{}
	}

	return s.dispatch(ctx, event, sends)
}

// NotifySummary sends the summary-ready email, carrying the key points and
// next steps extracted from the platform's meeting summary.
func (s *NotificationService) NotifySummary(ctx context.Context, meeting *models.Meeting, attendees []*models.Attendee, keyPoints, nextSteps []string) models.NotifyResult {
	if !s.ServiceReady() || meeting == nil || len(attendees) == 0 {
		return models.NotifyResult{}
	}
	if !s.Config.EmailEnabled {
		slog.DebugContext(ctx, "email notifications disabled", "event", string(models.NotificationSummaryReady))
		return models.NotifyResult{}
	}

	sends := make([]func() error, 0, len(attendees))
	for _, attendee := range attendees {
		sends = append(sends, func() error {
			return s.EmailService.SendSummaryReady(ctx, domain.EmailSummaryReady{
				RecipientEmail: attendee.Email,
				RecipientName:  attendee.DisplayName(),
				MeetingTopic:   meeting.Topic,
				StartTime:      meeting.StartTime,
				KeyPoints:      keyPoints,
				NextSteps:      nextSteps,
				RecordingURL:   meeting.RecordingURL,
			})
		})
	}

	return s.dispatch(ctx, models.NotificationSummaryReady, sends)
}

func (s *NotificationService) dispatch(ctx context.Context, event models.NotificationEvent, sends []func() error) models.NotifyResult {
	errs := s.pool.RunAll(ctx, sends...)

	result := models.NotifyResult{
		Sent:   len(sends) - len(errs),
		Failed: len(errs),
	}
	for i := 0; i < result.Sent; i++ {
		metrics.RecordEmail(string(event), true)
	}
	for _, err := range errs {
		metrics.RecordEmail(string(event), false)
		slog.ErrorContext(ctx, "notification email failed", "event", string(event), logging.ErrKey, err)
	}

	slog.DebugContext(ctx, "dispatched notifications",
		"event", string(event),
		"sent", result.Sent,
		"failed", result.Failed,
	)

	return result
}

func (s *NotificationService) buildInvitation(meeting *models.Meeting, attendee *models.Attendee) domain.EmailInvitation {
	return domain.EmailInvitation{
		MeetingUID:     meeting.UID,
		RecipientEmail: attendee.Email,
		RecipientName:  attendee.DisplayName(),
		MeetingTopic:   meeting.Topic,
		StartTime:      meeting.StartTime,
		Duration:       meeting.DurationOrDefault(),
		Timezone:       meeting.Timezone,
		Agenda:         meeting.Agenda,
		JoinLink:       meeting.JoinURL,
		MeetingID:      meeting.RemoteID,
		Passcode:       meeting.Password,
	}
}
