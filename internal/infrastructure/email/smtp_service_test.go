// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
)

func TestNewSMTPService(t *testing.T) {
	config := SMTPConfig{
		Host: "localhost",
		Port: 1025,
		From: "meetings@example.com",
	}

	service, err := NewSMTPService(config)
	require.NoError(t, err)
	assert.NotNil(t, service)
	assert.Equal(t, config, service.config)
	assert.NotNil(t, service.templates)
	assert.NotNil(t, service.ics)
}

func TestSMTPService_SendInvitation(t *testing.T) {
	server := NewMockSMTPServerForTesting(t, DefaultSuccessfulSMTPResponses())
	defer func() { _ = server.Close() }()

	host, err := server.GetHost()
	require.NoError(t, err)
	port, err := server.GetPort()
	require.NoError(t, err)

	service, err := NewSMTPService(SMTPConfig{
		Host: host,
		Port: port,
		From: "meetings@example.com",
	})
	require.NoError(t, err)

	invitation := domain.EmailInvitation{
		MeetingUID:     "meeting-123",
		RecipientEmail: "user@example.com",
		RecipientName:  "Jane Smith",
		MeetingTopic:   "Quarterly Review",
		StartTime:      time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC),
		Duration:       60,
		Timezone:       "UTC",
		JoinLink:       "https://zoom.us/j/987654321",
		MeetingID:      "987654321",
	}

	err = service.SendInvitation(context.Background(), invitation)
	assert.NoError(t, err)
}

func TestSMTPService_SendReminder(t *testing.T) {
	server := NewMockSMTPServerForTesting(t, DefaultSuccessfulSMTPResponses())
	defer func() { _ = server.Close() }()

	host, err := server.GetHost()
	require.NoError(t, err)
	port, err := server.GetPort()
	require.NoError(t, err)

	service, err := NewSMTPService(SMTPConfig{
		Host: host,
		Port: port,
		From: "meetings@example.com",
	})
	require.NoError(t, err)

	reminder := domain.EmailReminder{
		RecipientEmail: "user@example.com",
		MeetingTopic:   "Quarterly Review",
		StartTime:      time.Now().Add(time.Hour),
		Duration:       30,
		Timezone:       "UTC",
		JoinLink:       "https://zoom.us/j/987654321",
		MinutesUntil:   60,
	}

	err = service.SendReminder(context.Background(), reminder)
	assert.NoError(t, err)
}

func TestSMTPService_SendInvitation_ServerFailure(t *testing.T) {
	server := NewMockSMTPServerForTesting(t, DefaultFailureSMTPResponses())
	defer func() { _ = server.Close() }()

	host, err := server.GetHost()
	require.NoError(t, err)
	port, err := server.GetPort()
	require.NoError(t, err)

	service, err := NewSMTPService(SMTPConfig{
		Host: host,
		Port: port,
		From: "meetings@example.com",
	})
	require.NoError(t, err)

	invitation := domain.EmailInvitation{
		MeetingUID:     "meeting-123",
		RecipientEmail: "user@example.com",
		MeetingTopic:   "Quarterly Review",
		StartTime:      time.Now().Add(time.Hour),
		Duration:       60,
		Timezone:       "UTC",
	}

	err = service.SendInvitation(context.Background(), invitation)
	assert.Error(t, err)
}
