// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/service"
)

func newMeetingHandlerForTest() (*http.ServeMux, *domain.MockMeetingRepository, *domain.MockAttendeeRepository, *domain.MockMeetingGateway, *domain.MockMessageSender) {
	meetingRepo := &domain.MockMeetingRepository{}
	attendeeRepo := &domain.MockAttendeeRepository{}
	credentialRepo := &domain.MockCredentialRepository{}
	gateway := &domain.MockMeetingGateway{}
	sender := &domain.MockMessageSender{}

	credentialRepo.On("Get", mock.Anything, service.CredentialUID).Return(nil, domain.NewNotFoundError("credential not found"))
	svc := service.NewMeetingService(meetingRepo, attendeeRepo, credentialRepo, gateway, sender, service.ServiceConfig{
		AppOrigin: "https://crm.example.com",
	})

	mux := http.NewServeMux()
	NewMeetingHandler(svc).Register(mux)

	return mux, meetingRepo, attendeeRepo, gateway, sender
}

func TestMeetingHandler_GetMeeting(t *testing.T) {
	t.Run("returns the meeting as JSON", func(t *testing.T) {
		mux, meetingRepo, _, _, _ := newMeetingHandlerForTest()
		meetingRepo.On("Get", mock.Anything, "meeting-1").Return(&models.Meeting{
			UID:   "meeting-1",
			Topic: "Quarterly business review",
		}, nil)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meetings/meeting-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body models.Meeting
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "meeting-1", body.UID)
		assert.Equal(t, "Quarterly business review", body.Topic)
	})

	t.Run("unknown meeting maps to 404", func(t *testing.T) {
		mux, meetingRepo, _, _, _ := newMeetingHandlerForTest()
		meetingRepo.On("Get", mock.Anything, "nope").Return(nil, domain.NewNotFoundError("meeting not found"))

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meetings/nope", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "meeting not found", body.Error)
	})
}

func TestMeetingHandler_ListMeetings(t *testing.T) {
	mux, meetingRepo, _, _, _ := newMeetingHandlerForTest()
	meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{
		{UID: "meeting-1"},
		{UID: "meeting-2"},
	}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meetings", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body []*models.Meeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "meeting-1", body[0].UID)
}

func TestMeetingHandler_CreateMeeting(t *testing.T) {
	t.Run("malformed JSON maps to 400", func(t *testing.T) {
		mux, meetingRepo, _, _, _ := newMeetingHandlerForTest()

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader("{not json")))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		meetingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		mux, meetingRepo, _, _, _ := newMeetingHandlerForTest()

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(`{"topic":"x","bogus":true}`)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		meetingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("valid payload maps to 201", func(t *testing.T) {
		mux, meetingRepo, _, gateway, sender := newMeetingHandlerForTest()
		start := time.Now().UTC().Add(24 * time.Hour)

		meetingRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
			return m.Topic == "Pipeline review" && m.Status == models.MeetingStatusScheduled
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Meeting).UID = "meeting-new"
		}).Return(nil)
		gateway.On("CreateMeeting", mock.Anything, mock.Anything).Return(&models.RemoteMeeting{
			ID:      "987654321",
			JoinURL: "https://zoom.us/j/987654321",
		}, nil)
		meetingRepo.On("GetWithRevision", mock.Anything, "meeting-new").Return(&models.Meeting{
			UID:    "meeting-new",
			Topic:  "Pipeline review",
			Status: models.MeetingStatusScheduled,
		}, uint64(1), nil)
		meetingRepo.On("Update", mock.Anything, mock.Anything, uint64(1)).Return(nil)
		sender.On("SendMeetingCreated", mock.Anything, mock.Anything).Return(nil)

		payload, err := json.Marshal(map[string]any{
			"topic":      "Pipeline review",
			"type":       models.MeetingTypeScheduled,
			"start_time": start.Format(time.RFC3339),
			"duration":   30,
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(string(payload))))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var body models.Meeting
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "meeting-new", body.UID)
		assert.Equal(t, "987654321", body.RemoteID)
	})
}

func TestMeetingHandler_UpdateMeeting(t *testing.T) {
	mux, meetingRepo, _, _, sender := newMeetingHandlerForTest()

	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(&models.Meeting{
		UID:    "meeting-1",
		Topic:  "Old topic",
		Status: models.MeetingStatusScheduled,
	}, uint64(3), nil)
	meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
		return m.Topic == "New topic"
	}), uint64(3)).Return(nil)
	sender.On("SendMeetingUpdated", mock.Anything, mock.Anything).Return(nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/meetings/meeting-1", strings.NewReader(`{"topic":"New topic"}`)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body models.Meeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "New topic", body.Topic)
}

func TestMeetingHandler_CancelMeeting(t *testing.T) {
	t.Run("finished meetings map to 409", func(t *testing.T) {
		mux, meetingRepo, _, _, _ := newMeetingHandlerForTest()
		meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(&models.Meeting{
			UID:    "meeting-1",
			Status: models.MeetingStatusFinished,
		}, uint64(2), nil)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/meetings/meeting-1/cancel", nil))

		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("scheduled meetings are cancelled", func(t *testing.T) {
		mux, meetingRepo, _, _, sender := newMeetingHandlerForTest()
		meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(&models.Meeting{
			UID:    "meeting-1",
			Status: models.MeetingStatusScheduled,
		}, uint64(2), nil)
		meetingRepo.On("Update", mock.Anything, mock.Anything, uint64(2)).Return(nil)
		sender.On("SendMeetingStateChanged", mock.Anything, mock.Anything).Return(nil)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/meetings/meeting-1/cancel", nil))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body models.Meeting
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, models.MeetingStatusCancelled, body.Status)
	})
}

func TestMeetingHandler_DeleteMeeting(t *testing.T) {
	mux, meetingRepo, attendeeRepo, _, sender := newMeetingHandlerForTest()
	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(&models.Meeting{
		UID:    "meeting-1",
		Status: models.MeetingStatusCancelled,
	}, uint64(5), nil)
	attendeeRepo.On("ListByMeeting", mock.Anything, "meeting-1").Return([]*models.Attendee{}, nil)
	meetingRepo.On("Delete", mock.Anything, "meeting-1", uint64(5)).Return(nil)
	sender.On("SendMeetingDeleted", mock.Anything, mock.Anything).Return(nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/meetings/meeting-1", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestMeetingHandler_GetMeetingStats(t *testing.T) {
	mux, meetingRepo, _, _, _ := newMeetingHandlerForTest()
	meetingRepo.On("Get", mock.Anything, "meeting-1").Return(&models.Meeting{
		UID: "meeting-1",
		Stats: models.AttendanceStats{
			Invited:   10,
			Confirmed: 6,
			Attended:  5,
		},
	}, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meetings/meeting-1/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body models.AttendanceStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 10, body.Invited)
	assert.Equal(t, 6, body.Confirmed)
	assert.Equal(t, 5, body.Attended)
}
