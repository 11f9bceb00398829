// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
)

// mockNotifier implements NotificationDispatcher for testing.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, event models.NotificationEvent, meeting *models.Meeting, attendees []*models.Attendee) models.NotifyResult {
	args := m.Called(ctx, event, meeting, attendees)
	return args.Get(0).(models.NotifyResult)
}

func newAttendeeServiceForTest() (*AttendeeService, *domain.MockMeetingRepository, *domain.MockAttendeeRepository, *domain.MockMessageSender, *mockNotifier) {
	meetingRepo := &domain.MockMeetingRepository{}
	attendeeRepo := &domain.MockAttendeeRepository{}
	sender := &domain.MockMessageSender{}
	notifier := &mockNotifier{}
	svc := NewAttendeeService(meetingRepo, attendeeRepo, sender, notifier, ServiceConfig{})
	return svc, meetingRepo, attendeeRepo, sender, notifier
}

// expectStatsRecompute wires the repository calls one stats recomputation
// makes: list the attendees, reload the meeting, write it back.
func expectStatsRecompute(meetingRepo *domain.MockMeetingRepository, attendeeRepo *domain.MockAttendeeRepository, meetingUID string, attendees []*models.Attendee) {
	attendeeRepo.On("ListByMeeting", mock.Anything, meetingUID).Return(attendees, nil)
	meetingRepo.On("GetWithRevision", mock.Anything, meetingUID).Return(&models.Meeting{UID: meetingUID}, uint64(1), nil)
	meetingRepo.On("Update", mock.Anything, mock.Anything, uint64(1)).Return(nil)
}

func TestAttendeeService_AddAttendee(t *testing.T) {
	ctx := context.Background()

	t.Run("adds attendee and sends invitation", func(t *testing.T) {
		svc, meetingRepo, attendeeRepo, sender, notifier := newAttendeeServiceForTest()

		meeting := &models.Meeting{UID: "meeting-1", Topic: "Pipeline Review", Status: models.MeetingStatusScheduled}
		attendee := &models.Attendee{MeetingUID: "meeting-1", Email: "alice@example.com", FirstName: "Alice"}

		meetingRepo.On("Get", mock.Anything, "meeting-1").Return(meeting, nil)
		attendeeRepo.On("GetByMeetingAndEmail", mock.Anything, "meeting-1", "alice@example.com").
			Return(nil, domain.NewNotFoundError("attendee not found"))
		attendeeRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Attendee) bool {
			return a.Status == models.AttendeeStatusInvited && a.InvitedAt != nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Attendee).UID = "attendee-1"
		}).Return(nil)
		expectStatsRecompute(meetingRepo, attendeeRepo, "meeting-1", []*models.Attendee{attendee})
		notifier.On("Notify", mock.Anything, models.NotificationInvited, meeting, mock.Anything).Return(models.NotifyResult{Sent: 1})
		sender.On("SendAttendeeUpdated", mock.Anything, mock.Anything).Return(nil)

		added, err := svc.AddAttendee(ctx, attendee)

		require.NoError(t, err)
		assert.Equal(t, models.AttendeeStatusInvited, added.Status)
		notifier.AssertExpectations(t)
		attendeeRepo.AssertExpectations(t)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		svc, meetingRepo, attendeeRepo, _, _ := newAttendeeServiceForTest()

		meetingRepo.On("Get", mock.Anything, "meeting-1").Return(&models.Meeting{
			UID:    "meeting-1",
			Status: models.MeetingStatusScheduled,
		}, nil)
		attendeeRepo.On("GetByMeetingAndEmail", mock.Anything, "meeting-1", "alice@example.com").
			Return(&models.Attendee{UID: "attendee-1", Email: "alice@example.com"}, nil)

		_, err := svc.AddAttendee(ctx, &models.Attendee{MeetingUID: "meeting-1", Email: "alice@example.com"})

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
		attendeeRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cancelled meeting rejects attendees", func(t *testing.T) {
		svc, meetingRepo, _, _, _ := newAttendeeServiceForTest()

		meetingRepo.On("Get", mock.Anything, "meeting-1").Return(&models.Meeting{
			UID:    "meeting-1",
			Status: models.MeetingStatusCancelled,
		}, nil)

		_, err := svc.AddAttendee(ctx, &models.Attendee{MeetingUID: "meeting-1", Email: "alice@example.com"})

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
	})

	t.Run("validation errors", func(t *testing.T) {
		svc, _, _, _, _ := newAttendeeServiceForTest()

		tests := []struct {
			name     string
			attendee *models.Attendee
		}{
			{"nil payload", nil},
			{"missing meeting UID", &models.Attendee{Email: "alice@example.com"}},
			{"missing email", &models.Attendee{MeetingUID: "meeting-1"}},
			{"malformed email", &models.Attendee{MeetingUID: "meeting-1", Email: "not-an-email"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.AddAttendee(ctx, tt.attendee)
				require.Error(t, err)
				assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
			})
		}
	})
}

func TestAttendeeService_ConfirmAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms and notifies the host", func(t *testing.T) {
		svc, meetingRepo, attendeeRepo, sender, notifier := newAttendeeServiceForTest()

		attendee := &models.Attendee{
			UID:        "attendee-1",
			MeetingUID: "meeting-1",
			Email:      "alice@example.com",
			Status:     models.AttendeeStatusInvited,
		}
		meeting := &models.Meeting{UID: "meeting-1", HostEmail: "host@example.com"}

		attendeeRepo.On("GetWithRevision", mock.Anything, "attendee-1").Return(attendee, uint64(2), nil)
		attendeeRepo.On("Update", mock.Anything, mock.MatchedBy(func(a *models.Attendee) bool {
			return a.Status == models.AttendeeStatusConfirmed && a.RespondedAt != nil
		}), uint64(2)).Return(nil)
		expectStatsRecompute(meetingRepo, attendeeRepo, "meeting-1", []*models.Attendee{attendee})
		sender.On("SendAttendeeUpdated", mock.Anything, mock.MatchedBy(func(msg models.AttendeeEventMessage) bool {
			return msg.Status == models.AttendeeStatusConfirmed
		})).Return(nil)
		meetingRepo.On("Get", mock.Anything, "meeting-1").Return(meeting, nil)
		notifier.On("Notify", mock.Anything, models.NotificationConfirmed, meeting, mock.Anything).Return(models.NotifyResult{Sent: 1})

		confirmed, err := svc.ConfirmAttendance(ctx, "attendee-1")

		require.NoError(t, err)
		assert.Equal(t, models.AttendeeStatusConfirmed, confirmed.Status)
		notifier.AssertExpectations(t)
	})

	t.Run("confirming twice is a no-op", func(t *testing.T) {
		svc, meetingRepo, attendeeRepo, _, notifier := newAttendeeServiceForTest()

		attendeeRepo.On("GetWithRevision", mock.Anything, "attendee-1").Return(&models.Attendee{
			UID:        "attendee-1",
			MeetingUID: "meeting-1",
			Status:     models.AttendeeStatusConfirmed,
		}, uint64(2), nil)
		meetingRepo.On("Get", mock.Anything, "meeting-1").Return(&models.Meeting{UID: "meeting-1"}, nil)

		confirmed, err := svc.ConfirmAttendance(ctx, "attendee-1")

		require.NoError(t, err)
		assert.Equal(t, models.AttendeeStatusConfirmed, confirmed.Status)
		attendeeRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAttendeeService_MarkAttended(t *testing.T) {
	ctx := context.Background()

	t.Run("marks a confirmed attendee attended", func(t *testing.T) {
		svc, meetingRepo, attendeeRepo, sender, _ := newAttendeeServiceForTest()

		attendee := &models.Attendee{
			UID:        "attendee-1",
			MeetingUID: "meeting-1",
			Status:     models.AttendeeStatusConfirmed,
		}
		attendeeRepo.On("GetWithRevision", mock.Anything, "attendee-1").Return(attendee, uint64(3), nil)
		attendeeRepo.On("Update", mock.Anything, mock.MatchedBy(func(a *models.Attendee) bool {
			return a.Status == models.AttendeeStatusAttended
		}), uint64(3)).Return(nil)
		expectStatsRecompute(meetingRepo, attendeeRepo, "meeting-1", []*models.Attendee{attendee})
		sender.On("SendAttendeeUpdated", mock.Anything, mock.Anything).Return(nil)

		marked, err := svc.MarkAttended(ctx, "attendee-1")

		require.NoError(t, err)
		assert.Equal(t, models.AttendeeStatusAttended, marked.Status)
	})

	t.Run("invited attendees cannot be marked attended", func(t *testing.T) {
		svc, _, attendeeRepo, _, _ := newAttendeeServiceForTest()

		attendeeRepo.On("GetWithRevision", mock.Anything, "attendee-1").Return(&models.Attendee{
			UID:        "attendee-1",
			MeetingUID: "meeting-1",
			Status:     models.AttendeeStatusInvited,
		}, uint64(3), nil)

		_, err := svc.MarkAttended(ctx, "attendee-1")

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
		attendeeRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAttendeeService_RemoveAttendee(t *testing.T) {
	ctx := context.Background()

	svc, meetingRepo, attendeeRepo, _, _ := newAttendeeServiceForTest()

	attendeeRepo.On("GetWithRevision", mock.Anything, "attendee-1").Return(&models.Attendee{
		UID:        "attendee-1",
		MeetingUID: "meeting-1",
		Email:      "alice@example.com",
	}, uint64(2), nil)
	attendeeRepo.On("Delete", mock.Anything, "attendee-1", uint64(2)).Return(nil)
	expectStatsRecompute(meetingRepo, attendeeRepo, "meeting-1", []*models.Attendee{})

	err := svc.RemoveAttendee(ctx, "attendee-1")

	require.NoError(t, err)
	attendeeRepo.AssertExpectations(t)
}

func TestAttendeeService_StatsRecompute(t *testing.T) {
	ctx := context.Background()

	// Five attendees: 2 confirmed (one of them attended), 1 declined,
	// 1 no-show, 1 still invited. Attended keeps counting as confirmed so
	// the rate stays stable once the meeting ran.
	attendees := []*models.Attendee{
		{UID: "a1", MeetingUID: "meeting-1", Status: models.AttendeeStatusConfirmed},
		{UID: "a2", MeetingUID: "meeting-1", Status: models.AttendeeStatusAttended},
		{UID: "a3", MeetingUID: "meeting-1", Status: models.AttendeeStatusDeclined},
		{UID: "a4", MeetingUID: "meeting-1", Status: models.AttendeeStatusNoShow},
		{UID: "a5", MeetingUID: "meeting-1", Status: models.AttendeeStatusInvited},
	}

	svc, meetingRepo, attendeeRepo, _, _ := newAttendeeServiceForTest()

	attendeeRepo.On("ListByMeeting", mock.Anything, "meeting-1").Return(attendees, nil)
	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(&models.Meeting{UID: "meeting-1"}, uint64(7), nil)
	meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
		return m.Stats.Invited == 5 &&
			m.Stats.Confirmed == 2 &&
			m.Stats.Declined == 1 &&
			m.Stats.Attended == 1 &&
			m.Stats.NoShow == 1 &&
			m.Stats.Rate == 40
	}), uint64(7)).Return(nil)

	err := svc.recomputeStats(ctx, "meeting-1")

	require.NoError(t, err)
	meetingRepo.AssertExpectations(t)
}

func TestAttendeeService_ListAttendees(t *testing.T) {
	ctx := context.Background()

	t.Run("lists attendees of an existing meeting", func(t *testing.T) {
		svc, meetingRepo, attendeeRepo, _, _ := newAttendeeServiceForTest()

		meetingRepo.On("Get", mock.Anything, "meeting-1").Return(&models.Meeting{UID: "meeting-1"}, nil)
		attendeeRepo.On("ListByMeeting", mock.Anything, "meeting-1").Return([]*models.Attendee{
			{UID: "attendee-1"},
			{UID: "attendee-2"},
		}, nil)

		attendees, err := svc.ListAttendees(ctx, "meeting-1")

		require.NoError(t, err)
		assert.Len(t, attendees, 2)
	})

	t.Run("unknown meeting", func(t *testing.T) {
		svc, meetingRepo, _, _, _ := newAttendeeServiceForTest()

		meetingRepo.On("Get", mock.Anything, "missing").Return(nil, domain.NewNotFoundError("meeting not found"))

		_, err := svc.ListAttendees(ctx, "missing")

		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
	})
}
