// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
)

type mockWebhookValidator struct {
	mock.Mock
}

func (m *mockWebhookValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	args := m.Called(body, signature, timestamp)
	return args.Error(0)
}

func (m *mockWebhookValidator) EncryptToken(plainToken string) string {
	args := m.Called(plainToken)
	return args.String(0)
}

func newWebhookServiceForTest() (*WebhookService, *domain.MockMeetingRepository, *domain.MockAttendeeRepository, *domain.MockMessageSender, *domain.MockEmailService, *mockWebhookValidator) {
	meetingRepo := &domain.MockMeetingRepository{}
	attendeeRepo := &domain.MockAttendeeRepository{}
	sender := &domain.MockMessageSender{}
	emailService := &domain.MockEmailService{}
	validator := &mockWebhookValidator{}
	notifier := NewNotificationService(emailService, ServiceConfig{EmailEnabled: true})
	svc := NewWebhookService(meetingRepo, attendeeRepo, sender, notifier, validator, ServiceConfig{EmailEnabled: true})
	return svc, meetingRepo, attendeeRepo, sender, emailService, validator
}

func webhookEvent(t *testing.T, event string, payload any) *models.ZoomWebhookEvent {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &models.ZoomWebhookEvent{
		Event:   event,
		EventTS: time.Now().UnixMilli(),
		Payload: raw,
	}
}

func TestWebhookService_ValidateSignature(t *testing.T) {
	svc, _, _, _, _, validator := newWebhookServiceForTest()
	body := []byte(`{"event":"meeting.started"}`)

	t.Run("valid signature passes", func(t *testing.T) {
		validator.On("ValidateSignature", body, "v0=good", "1700000000").Return(nil).Once()

		assert.NoError(t, svc.ValidateSignature(body, "v0=good", "1700000000"))
	})

	t.Run("invalid signature becomes an authentication error", func(t *testing.T) {
		validator.On("ValidateSignature", body, "v0=bad", "1700000000").Return(errors.New("signature mismatch")).Once()

		err := svc.ValidateSignature(body, "v0=bad", "1700000000")

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeAuthentication, domain.GetErrorType(err))
	})
}

func TestWebhookService_HandleURLValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, _, validator := newWebhookServiceForTest()

	validator.On("EncryptToken", "plain-abc").Return("encrypted-abc")

	event := webhookEvent(t, models.ZoomEventEndpointURLValidation, map[string]any{
		"plainToken": "plain-abc",
	})
	response, err := svc.HandleURLValidation(ctx, event)

	require.NoError(t, err)
	assert.Equal(t, "plain-abc", response.PlainToken)
	assert.Equal(t, "encrypted-abc", response.EncryptedToken)
}

func TestWebhookService_HandleEvent_MeetingStarted(t *testing.T) {
	ctx := context.Background()
	svc, meetingRepo, _, sender, _, _ := newWebhookServiceForTest()

	meeting := &models.Meeting{
		UID:      "meeting-1",
		RemoteID: "11111111",
		Topic:    "Pipeline Review",
		Status:   models.MeetingStatusScheduled,
	}
	meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)
	meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
		return m.Status == models.MeetingStatusActive && m.ActualStart != nil
	}), uint64(3)).Return(nil)
	sender.On("SendMeetingStateChanged", mock.Anything, mock.MatchedBy(func(msg models.MeetingEventMessage) bool {
		return msg.MeetingUID == "meeting-1" &&
			msg.PrevStatus == models.MeetingStatusScheduled &&
			msg.Status == models.MeetingStatusActive
	})).Return(nil)

	event := webhookEvent(t, models.ZoomEventMeetingStarted, map[string]any{
		"object": map[string]any{"id": "11111111", "topic": "Pipeline Review"},
	})

	require.NoError(t, svc.HandleEvent(ctx, event))
	meetingRepo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestWebhookService_HandleEvent_MeetingStartedTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, meetingRepo, _, sender, _, _ := newWebhookServiceForTest()

	started := time.Now().UTC().Add(-5 * time.Minute)
	meeting := &models.Meeting{
		UID:         "meeting-1",
		RemoteID:    "11111111",
		Status:      models.MeetingStatusActive,
		ActualStart: &started,
	}
	meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)

	event := webhookEvent(t, models.ZoomEventMeetingStarted, map[string]any{
		"object": map[string]any{"id": "11111111"},
	})

	require.NoError(t, svc.HandleEvent(ctx, event))
	meetingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "SendMeetingStateChanged", mock.Anything, mock.Anything)
}

func TestWebhookService_HandleEvent_MeetingEnded(t *testing.T) {
	ctx := context.Background()
	svc, meetingRepo, _, sender, _, _ := newWebhookServiceForTest()

	startTime := time.Now().UTC().Add(-45 * time.Minute)
	endTime := time.Now().UTC()
	meeting := &models.Meeting{
		UID:         "meeting-1",
		RemoteID:    "11111111",
		Status:      models.MeetingStatusActive,
		ActualStart: &startTime,
		Duration:    60,
	}
	meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)
	meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
		return m.Status == models.MeetingStatusFinished &&
			m.ActualEnd != nil &&
			m.Duration == 45
	}), uint64(3)).Return(nil)
	sender.On("SendMeetingStateChanged", mock.Anything, mock.Anything).Return(nil)

	event := webhookEvent(t, models.ZoomEventMeetingEnded, map[string]any{
		"object": map[string]any{
			"id":       "11111111",
			"end_time": endTime.Format(time.RFC3339),
		},
	})

	require.NoError(t, svc.HandleEvent(ctx, event))
	meetingRepo.AssertExpectations(t)
}

func TestWebhookService_HandleEvent_MeetingUpdated(t *testing.T) {
	ctx := context.Background()

	t.Run("applies changed fields and publishes", func(t *testing.T) {
		svc, meetingRepo, _, sender, _, _ := newWebhookServiceForTest()

		meeting := &models.Meeting{
			UID:      "meeting-1",
			RemoteID: "11111111",
			Topic:    "Old topic",
			Status:   models.MeetingStatusScheduled,
			Duration: 30,
		}
		meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
		meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)
		meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
			return m.Topic == "New topic" && m.Duration == 60 && m.LastSyncedAt != nil
		}), uint64(3)).Return(nil)
		sender.On("SendMeetingUpdated", mock.Anything, mock.MatchedBy(func(msg models.MeetingEventMessage) bool {
			return msg.MeetingUID == "meeting-1" && msg.Topic == "New topic"
		})).Return(nil)

		event := webhookEvent(t, models.ZoomEventMeetingUpdated, map[string]any{
			"object": map[string]any{"id": "11111111", "topic": "New topic", "duration": 60},
		})

		require.NoError(t, svc.HandleEvent(ctx, event))
		meetingRepo.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("no changes means no write", func(t *testing.T) {
		svc, meetingRepo, _, sender, _, _ := newWebhookServiceForTest()

		meeting := &models.Meeting{
			UID:      "meeting-1",
			RemoteID: "11111111",
			Topic:    "Same topic",
			Status:   models.MeetingStatusScheduled,
		}
		meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
		meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)

		event := webhookEvent(t, models.ZoomEventMeetingUpdated, map[string]any{
			"object": map[string]any{"id": "11111111", "topic": "Same topic"},
		})

		require.NoError(t, svc.HandleEvent(ctx, event))
		meetingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		sender.AssertNotCalled(t, "SendMeetingUpdated", mock.Anything, mock.Anything)
	})
}

func TestWebhookService_HandleEvent_MeetingDeleted(t *testing.T) {
	ctx := context.Background()
	svc, meetingRepo, _, sender, _, _ := newWebhookServiceForTest()

	meeting := &models.Meeting{
		UID:      "meeting-1",
		RemoteID: "11111111",
		Status:   models.MeetingStatusScheduled,
	}
	meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)
	meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
		return m.Status == models.MeetingStatusCancelled
	}), uint64(3)).Return(nil)
	sender.On("SendMeetingStateChanged", mock.Anything, mock.Anything).Return(nil)

	event := webhookEvent(t, models.ZoomEventMeetingDeleted, map[string]any{
		"object": map[string]any{"id": "11111111"},
	})

	require.NoError(t, svc.HandleEvent(ctx, event))
	meetingRepo.AssertExpectations(t)
}

func TestWebhookService_HandleEvent_UnknownMeetingIsIgnored(t *testing.T) {
	ctx := context.Background()
	svc, meetingRepo, _, _, _, _ := newWebhookServiceForTest()

	meetingRepo.On("GetByRemoteID", mock.Anything, "99999999").
		Return(nil, domain.NewNotFoundError("meeting not found"))

	event := webhookEvent(t, models.ZoomEventMeetingStarted, map[string]any{
		"object": map[string]any{"id": "99999999"},
	})

	assert.NoError(t, svc.HandleEvent(ctx, event))
}

func TestWebhookService_HandleEvent_UnsupportedEventIsIgnored(t *testing.T) {
	ctx := context.Background()
	svc, meetingRepo, _, _, _, _ := newWebhookServiceForTest()

	event := webhookEvent(t, "webinar.started", map[string]any{
		"object": map[string]any{"id": "11111111"},
	})

	assert.NoError(t, svc.HandleEvent(ctx, event))
	meetingRepo.AssertNotCalled(t, "GetByRemoteID", mock.Anything, mock.Anything)
}

func TestWebhookService_HandleEvent_ParticipantJoined(t *testing.T) {
	ctx := context.Background()
	joinTime := time.Now().UTC()

	t.Run("marks a confirmed attendee attended", func(t *testing.T) {
		svc, meetingRepo, attendeeRepo, _, _, _ := newWebhookServiceForTest()

		meeting := &models.Meeting{UID: "meeting-1", RemoteID: "11111111", Status: models.MeetingStatusActive}
		meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
		meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)

		attendee := &models.Attendee{
			UID:        "attendee-1",
			MeetingUID: "meeting-1",
			Email:      "alice@example.com",
			Status:     models.AttendeeStatusConfirmed,
		}
		attendeeRepo.On("GetByMeetingAndEmail", mock.Anything, "meeting-1", "alice@example.com").Return(attendee, nil)
		attendeeRepo.On("GetWithRevision", mock.Anything, "attendee-1").Return(attendee, uint64(2), nil)
		attendeeRepo.On("Update", mock.Anything, mock.MatchedBy(func(a *models.Attendee) bool {
			return a.Status == models.AttendeeStatusAttended && a.JoinedAt != nil
		}), uint64(2)).Return(nil)

		event := webhookEvent(t, models.ZoomEventParticipantJoined, map[string]any{
			"object": map[string]any{
				"id": "11111111",
				"participant": map[string]any{
					"email":     "alice@example.com",
					"join_time": joinTime.Format(time.RFC3339),
				},
			},
		})

		require.NoError(t, svc.HandleEvent(ctx, event))
		attendeeRepo.AssertExpectations(t)
	})

	t.Run("unknown participant is ignored", func(t *testing.T) {
		svc, meetingRepo, attendeeRepo, _, _, _ := newWebhookServiceForTest()

		meeting := &models.Meeting{UID: "meeting-1", RemoteID: "11111111", Status: models.MeetingStatusActive}
		meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
		meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)
		attendeeRepo.On("GetByMeetingAndEmail", mock.Anything, "meeting-1", "stranger@example.com").
			Return(nil, domain.NewNotFoundError("attendee not found"))

		event := webhookEvent(t, models.ZoomEventParticipantJoined, map[string]any{
			"object": map[string]any{
				"id":          "11111111",
				"participant": map[string]any{"email": "stranger@example.com"},
			},
		})

		require.NoError(t, svc.HandleEvent(ctx, event))
		attendeeRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWebhookService_HandleEvent_ParticipantLeft(t *testing.T) {
	ctx := context.Background()
	svc, meetingRepo, attendeeRepo, _, _, _ := newWebhookServiceForTest()

	leaveTime := time.Now().UTC()
	meeting := &models.Meeting{UID: "meeting-1", RemoteID: "11111111", Status: models.MeetingStatusActive}
	meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)

	joined := leaveTime.Add(-40 * time.Minute)
	attendee := &models.Attendee{
		UID:        "attendee-1",
		MeetingUID: "meeting-1",
		Email:      "alice@example.com",
		Status:     models.AttendeeStatusAttended,
		JoinedAt:   &joined,
	}
	attendeeRepo.On("GetByMeetingAndEmail", mock.Anything, "meeting-1", "alice@example.com").Return(attendee, nil)
	attendeeRepo.On("GetWithRevision", mock.Anything, "attendee-1").Return(attendee, uint64(2), nil)
	attendeeRepo.On("Update", mock.Anything, mock.MatchedBy(func(a *models.Attendee) bool {
		return a.LeftAt != nil && a.DurationMinutes == 40
	}), uint64(2)).Return(nil)

	event := webhookEvent(t, models.ZoomEventParticipantLeft, map[string]any{
		"object": map[string]any{
			"id": "11111111",
			"participant": map[string]any{
				"email":      "alice@example.com",
				"leave_time": leaveTime.Format(time.RFC3339),
				"duration":   2400,
			},
		},
	})

	require.NoError(t, svc.HandleEvent(ctx, event))
	attendeeRepo.AssertExpectations(t)
}

func TestWebhookService_HandleEvent_RecordingCompleted(t *testing.T) {
	ctx := context.Background()
	svc, meetingRepo, _, _, _, _ := newWebhookServiceForTest()

	meeting := &models.Meeting{UID: "meeting-1", RemoteID: "11111111", Status: models.MeetingStatusFinished}
	meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)
	meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
		return m.RecordingURL == "https://zoom.us/rec/share/abc" &&
			m.RecordingPlayURL == "https://zoom.us/rec/play/abc"
	}), uint64(3)).Return(nil)

	event := webhookEvent(t, models.ZoomEventRecordingCompleted, map[string]any{
		"object": map[string]any{
			"id":        11111111,
			"share_url": "https://zoom.us/rec/share/abc",
			"recording_files": []map[string]any{
				{"file_type": "M4A", "play_url": "https://zoom.us/rec/play/audio"},
				{"file_type": "MP4", "play_url": "https://zoom.us/rec/play/abc"},
			},
		},
	})

	require.NoError(t, svc.HandleEvent(ctx, event))
	meetingRepo.AssertExpectations(t)
}

func TestWebhookService_HandleEvent_SummaryCompleted(t *testing.T) {
	ctx := context.Background()
	svc, meetingRepo, attendeeRepo, _, emailService, _ := newWebhookServiceForTest()

	meeting := &models.Meeting{
		UID:      "meeting-1",
		RemoteID: "11111111",
		Topic:    "Pipeline Review",
		Status:   models.MeetingStatusFinished,
	}
	meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(meeting, nil)
	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)
	attendeeRepo.On("ListByMeeting", mock.Anything, "meeting-1").Return([]*models.Attendee{
		{UID: "attendee-1", Email: "alice@example.com", Status: models.AttendeeStatusAttended},
		{UID: "attendee-2", Email: "bob@example.com", Status: models.AttendeeStatusDeclined},
	}, nil)
	emailService.On("SendSummaryReady", mock.Anything, mock.MatchedBy(func(s domain.EmailSummaryReady) bool {
		return s.RecipientEmail == "alice@example.com" &&
			len(s.KeyPoints) == 1 && s.KeyPoints[0] == "Budget approved" &&
			len(s.NextSteps) == 1 && s.NextSteps[0] == "Draft the contract"
	})).Return(nil)

	event := webhookEvent(t, models.ZoomEventSummaryCompleted, map[string]any{
		"object": map[string]any{
			"id": 11111111,
			"summary": map[string]any{
				"key_points": []string{"Budget approved"},
				"next_steps": []string{"Draft the contract"},
			},
		},
	})

	require.NoError(t, svc.HandleEvent(ctx, event))
	emailService.AssertExpectations(t)
	emailService.AssertNotCalled(t, "SendSummaryReady", mock.Anything, mock.MatchedBy(func(s domain.EmailSummaryReady) bool {
		return s.RecipientEmail == "bob@example.com"
	}))
}
