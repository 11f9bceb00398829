// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// SMTPService implements the EmailService interface using SMTP
type SMTPService struct {
	config    SMTPConfig
	templates MeetingTemplateManager
	ics       MeetingICSGenerator
}

// SMTPConfig holds the SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string // Optional for authenticated SMTP
	Password string // Optional for authenticated SMTP
}

// NewSMTPService creates a new SMTP email service
func NewSMTPService(config SMTPConfig) (*SMTPService, error) {
	templates, err := NewTemplateManager()
	if err != nil {
		return nil, err
	}

	return &SMTPService{
		config:    config,
		templates: templates,
		ics:       NewICSGenerator("CRM Suite", config.From),
	}, nil
}

// Ensure SMTPService implements domain.EmailService
var _ domain.EmailService = (*SMTPService)(nil)

// SendInvitation sends an invitation email to a meeting attendee, attaching
// an ICS calendar entry. A pre-built attachment on the invitation wins;
// otherwise one is generated from the invitation details.
func (s *SMTPService) SendInvitation(ctx context.Context, invitation domain.EmailInvitation) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", invitation.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_topic", invitation.MeetingTopic))

	rendered, err := s.templates.RenderInvitation(invitation)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render invitation templates", logging.ErrKey, err)
		return err
	}

	attachment := invitation.ICSAttachment
	if attachment == nil {
		attachment, err = s.buildInvitationICS(invitation)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate invitation ICS", logging.ErrKey, err)
			return err
		}
	}

	subject := fmt.Sprintf("Invitation: %s", invitation.MeetingTopic)
	message := buildEmailMessage(invitation.RecipientEmail, subject, rendered.HTML, rendered.Text, attachment, s.config)
	err = sendEmailMessage(invitation.RecipientEmail, message, s.config)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send invitation email", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "invitation email sent successfully")
	return nil
}

// SendReminder sends a reminder email shortly before a meeting starts
func (s *SMTPService) SendReminder(ctx context.Context, reminder domain.EmailReminder) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", reminder.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_topic", reminder.MeetingTopic))

	rendered, err := s.templates.RenderReminder(reminder)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render reminder templates", logging.ErrKey, err)
		return err
	}

	subject := fmt.Sprintf("Reminder: %s starts soon", reminder.MeetingTopic)
	message := buildEmailMessage(reminder.RecipientEmail, subject, rendered.HTML, rendered.Text, nil, s.config)
	err = sendEmailMessage(reminder.RecipientEmail, message, s.config)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send reminder email", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "reminder email sent successfully")
	return nil
}

// SendHostConfirmation notifies the meeting host that an attendee confirmed
func (s *SMTPService) SendHostConfirmation(ctx context.Context, confirmation domain.EmailHostConfirmation) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", confirmation.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_topic", confirmation.MeetingTopic))

	rendered, err := s.templates.RenderHostConfirmation(confirmation)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render host confirmation templates", logging.ErrKey, err)
		return err
	}

	subject := fmt.Sprintf("Attendance confirmed: %s", confirmation.MeetingTopic)
	message := buildEmailMessage(confirmation.RecipientEmail, subject, rendered.HTML, rendered.Text, nil, s.config)
	err = sendEmailMessage(confirmation.RecipientEmail, message, s.config)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send host confirmation email", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "host confirmation email sent successfully")
	return nil
}

// SendSummaryReady notifies a participant that the meeting summary is available
func (s *SMTPService) SendSummaryReady(ctx context.Context, summary domain.EmailSummaryReady) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", summary.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_topic", summary.MeetingTopic))

	rendered, err := s.templates.RenderSummaryReady(summary)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render summary ready templates", logging.ErrKey, err)
		return err
	}

	subject := fmt.Sprintf("Meeting summary available: %s", summary.MeetingTopic)
	message := buildEmailMessage(summary.RecipientEmail, subject, rendered.HTML, rendered.Text, nil, s.config)
	err = sendEmailMessage(summary.RecipientEmail, message, s.config)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send summary ready email", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "summary ready email sent successfully")
	return nil
}

func (s *SMTPService) buildInvitationICS(invitation domain.EmailInvitation) (*domain.EmailAttachment, error) {
	content, err := s.ics.GenerateMeetingInvitationICS(ICSMeetingInvitationParams{
		MeetingUID:      invitation.MeetingUID,
		MeetingTopic:    invitation.MeetingTopic,
		Agenda:          invitation.Agenda,
		StartTime:       invitation.StartTime,
		DurationMinutes: invitation.Duration,
		Timezone:        invitation.Timezone,
		JoinLink:        invitation.JoinLink,
		MeetingID:       invitation.MeetingID,
		Passcode:        invitation.Passcode,
		RecipientEmail:  invitation.RecipientEmail,
	})
	if err != nil {
		return nil, err
	}

	return &domain.EmailAttachment{
		Filename:    "invite.ics",
		ContentType: "text/calendar; method=REQUEST",
		Content:     base64.StdEncoding.EncodeToString([]byte(content)),
	}, nil
}
