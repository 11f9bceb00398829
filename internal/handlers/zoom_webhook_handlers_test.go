// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/zoom/webhook"
	"github.com/crmsuite/zoom-sync-service/internal/middleware"
	"github.com/crmsuite/zoom-sync-service/internal/service"
	"github.com/crmsuite/zoom-sync-service/pkg/constants"
)

const webhookTestSecret = "webhook-secret"

func newWebhookHandlerForTest() (http.Handler, *domain.MockMeetingRepository, *domain.MockAttendeeRepository, *domain.MockMessageSender) {
	meetingRepo := &domain.MockMeetingRepository{}
	attendeeRepo := &domain.MockAttendeeRepository{}
	sender := &domain.MockMessageSender{}
	emailService := &domain.MockEmailService{}

	config := service.ServiceConfig{AppOrigin: "https://crm.example.com", EmailEnabled: true}
	notifier := service.NewNotificationService(emailService, config)
	validator := webhook.NewZoomWebhookValidator(webhookTestSecret)
	svc := service.NewWebhookService(meetingRepo, attendeeRepo, sender, notifier, validator, config)

	mux := http.NewServeMux()
	NewZoomWebhookHandler(svc).Register(mux)

	return middleware.WebhookBodyCaptureMiddleware()(mux), meetingRepo, attendeeRepo, sender
}

// signedWebhookRequest builds a webhook delivery signed the way Zoom signs
// its deliveries.
func signedWebhookRequest(t *testing.T, event string, payload any) *http.Request {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	body, err := json.Marshal(models.ZoomWebhookEvent{
		Event:   event,
		EventTS: time.Now().UnixMilli(),
		Payload: raw,
	})
	require.NoError(t, err)

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	mac.Write([]byte(fmt.Sprintf("v0:%s:%s", timestamp, string(body))))
	signature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/zoom", bytes.NewReader(body))
	req.Header.Set(constants.ZoomSignatureHeader, signature)
	req.Header.Set(constants.ZoomTimestampHeader, timestamp)
	return req
}

func TestZoomWebhookHandler_RejectsBadSignature(t *testing.T) {
	handler, meetingRepo, _, _ := newWebhookHandlerForTest()

	body := []byte(`{"event":"meeting.started","payload":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/zoom", bytes.NewReader(body))
	req.Header.Set(constants.ZoomSignatureHeader, "v0=deadbeef")
	req.Header.Set(constants.ZoomTimestampHeader, strconv.FormatInt(time.Now().Unix(), 10))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	meetingRepo.AssertNotCalled(t, "GetByRemoteID", mock.Anything, mock.Anything)
}

func TestZoomWebhookHandler_URLValidation(t *testing.T) {
	handler, _, _, _ := newWebhookHandlerForTest()

	req := signedWebhookRequest(t, models.ZoomEventEndpointURLValidation, map[string]any{
		"plainToken": "plain-abc",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response models.ZoomURLValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "plain-abc", response.PlainToken)
	assert.NotEmpty(t, response.EncryptedToken)
}

func TestZoomWebhookHandler_MeetingStarted(t *testing.T) {
	handler, meetingRepo, _, sender := newWebhookHandlerForTest()

	meetingRepo.On("GetByRemoteID", mock.Anything, "11111111").Return(&models.Meeting{
		UID:      "meeting-1",
		RemoteID: "11111111",
		Status:   models.MeetingStatusScheduled,
	}, nil)
	meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(&models.Meeting{
		UID:      "meeting-1",
		RemoteID: "11111111",
		Status:   models.MeetingStatusScheduled,
	}, uint64(1), nil)
	meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
		return m.Status == models.MeetingStatusActive && m.ActualStart != nil
	}), uint64(1)).Return(nil)
	sender.On("SendMeetingStateChanged", mock.Anything, mock.Anything).Return(nil)

	req := signedWebhookRequest(t, models.ZoomEventMeetingStarted, map[string]any{
		"object": map[string]any{
			"id":         "11111111",
			"start_time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sender.AssertCalled(t, "SendMeetingStateChanged", mock.Anything, mock.Anything)
}

func TestZoomWebhookHandler_UnknownMeetingIsAccepted(t *testing.T) {
	handler, meetingRepo, _, _ := newWebhookHandlerForTest()
	meetingRepo.On("GetByRemoteID", mock.Anything, "404404404").Return(nil, domain.NewNotFoundError("meeting not found"))

	req := signedWebhookRequest(t, models.ZoomEventMeetingStarted, map[string]any{
		"object": map[string]any{"id": "404404404"},
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// deliveries for meetings this CRM never linked are acknowledged so
	// Zoom does not retry them
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestZoomWebhookHandler_MalformedBody(t *testing.T) {
	handler, _, _, _ := newWebhookHandlerForTest()

	body := []byte("{not json")
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	mac.Write([]byte(fmt.Sprintf("v0:%s:%s", timestamp, string(body))))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/zoom", bytes.NewReader(body))
	req.Header.Set(constants.ZoomSignatureHeader, "v0="+hex.EncodeToString(mac.Sum(nil)))
	req.Header.Set(constants.ZoomTimestampHeader, timestamp)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
