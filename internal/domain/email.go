// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendInvitation(ctx context.Context, invitation EmailInvitation) error
	SendReminder(ctx context.Context, reminder EmailReminder) error
	SendHostConfirmation(ctx context.Context, confirmation EmailHostConfirmation) error
	SendSummaryReady(ctx context.Context, summary EmailSummaryReady) error
}

// EmailInvitation contains the data needed to send a meeting invitation email
type EmailInvitation struct {
	MeetingUID     string // Local meeting UID, used as the ICS event UID
	RecipientEmail string
	RecipientName  string
	MeetingTopic   string
	StartTime      time.Time
	Duration       int // Duration in minutes
	Timezone       string
	Agenda         string
	JoinLink       string
	MeetingID      string           // Zoom meeting ID for dial-in
	Passcode       string           // Zoom passcode
	ICSAttachment  *EmailAttachment // ICS calendar attachment
}

// EmailReminder contains the data needed to send a meeting reminder email
type EmailReminder struct {
	RecipientEmail string
	RecipientName  string
	MeetingTopic   string
	StartTime      time.Time
	Duration       int
	Timezone       string
	JoinLink       string
	MinutesUntil   int
}

// EmailHostConfirmation notifies the meeting host that an attendee confirmed
type EmailHostConfirmation struct {
	RecipientEmail string // host email
	AttendeeName   string
	AttendeeEmail  string
	MeetingTopic   string
	StartTime      time.Time
	Timezone       string
}

// EmailSummaryReady notifies participants that the meeting summary is available
type EmailSummaryReady struct {
	RecipientEmail string
	RecipientName  string
	MeetingTopic   string
	StartTime      time.Time
	KeyPoints      []string
	NextSteps      []string
	RecordingURL   string
}

// EmailAttachment represents a file attachment for an email
type EmailAttachment struct {
	Filename    string // Name of the attachment file
	ContentType string // MIME type of the attachment
	Content     string // Base64 encoded content
}
