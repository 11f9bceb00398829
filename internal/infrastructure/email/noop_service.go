// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"log/slog"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// NoOpService is a no-operation email service that logs but doesn't send emails
type NoOpService struct{}

// NewNoOpService creates a new no-op email service
func NewNoOpService() *NoOpService {
	return &NoOpService{}
}

// Ensure NoOpService implements domain.EmailService
var _ domain.EmailService = (*NoOpService)(nil)

// SendInvitation logs the invitation but doesn't send an email
func (s *NoOpService) SendInvitation(ctx context.Context, invitation domain.EmailInvitation) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", invitation.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_topic", invitation.MeetingTopic))

	slog.DebugContext(ctx, "email service disabled, skipping invitation email")
	return nil
}

// SendReminder logs the reminder but doesn't send an email
func (s *NoOpService) SendReminder(ctx context.Context, reminder domain.EmailReminder) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", reminder.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_topic", reminder.MeetingTopic))

	slog.DebugContext(ctx, "email service disabled, skipping reminder email")
	return nil
}

// SendHostConfirmation logs the confirmation but doesn't send an email
func (s *NoOpService) SendHostConfirmation(ctx context.Context, confirmation domain.EmailHostConfirmation) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", confirmation.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_topic", confirmation.MeetingTopic))

	slog.DebugContext(ctx, "email service disabled, skipping host confirmation email")
	return nil
}

// SendSummaryReady logs the notification but doesn't send an email
func (s *NoOpService) SendSummaryReady(ctx context.Context, summary domain.EmailSummaryReady) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", summary.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("meeting_topic", summary.MeetingTopic))

	slog.DebugContext(ctx, "email service disabled, skipping summary ready email")
	return nil
}
