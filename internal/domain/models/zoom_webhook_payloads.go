// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ZoomWebhookEvent is the outer envelope of every Zoom webhook request.
type ZoomWebhookEvent struct {
	Event   string          `json:"event"`
	EventTS int64           `json:"event_ts"`
	Payload json.RawMessage `json:"payload"`
}

// Zoom webhook event names handled by the service.
const (
	ZoomEventEndpointURLValidation = "endpoint.url_validation"
	ZoomEventMeetingStarted        = "meeting.started"
	ZoomEventMeetingEnded          = "meeting.ended"
	ZoomEventMeetingUpdated        = "meeting.updated"
	ZoomEventMeetingDeleted        = "meeting.deleted"
	ZoomEventParticipantJoined     = "meeting.participant_joined"
	ZoomEventParticipantLeft       = "meeting.participant_left"
	ZoomEventRecordingCompleted    = "recording.completed"
	ZoomEventSummaryCompleted      = "meeting.summary_completed"
)

// ZoomURLValidationPayload represents the payload for endpoint.url_validation events
type ZoomURLValidationPayload struct {
	PlainToken string `json:"plainToken"`
}

// ZoomURLValidationResponse is the challenge response Zoom expects back.
type ZoomURLValidationResponse struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// ZoomMeetingStartedPayload represents the payload for meeting.started webhook events
type ZoomMeetingStartedPayload struct {
	Object struct {
		UUID      string    `json:"uuid"`
		ID        string    `json:"id"` // Zoom sends as string in webhook events
		HostID    string    `json:"host_id"`
		Topic     string    `json:"topic"`
		Type      int       `json:"type"`
		StartTime time.Time `json:"start_time"`
		Timezone  string    `json:"timezone"`
		Duration  int       `json:"duration"`
	} `json:"object"`
}

// ZoomMeetingEndedPayload represents the payload for meeting.ended webhook events
type ZoomMeetingEndedPayload struct {
	Object struct {
		UUID      string    `json:"uuid"`
		ID        string    `json:"id"` // Zoom sends as string in webhook events
		HostID    string    `json:"host_id"`
		Topic     string    `json:"topic"`
		Type      int       `json:"type"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
		Duration  int       `json:"duration"`
		Timezone  string    `json:"timezone"`
	} `json:"object"`
}

// ZoomMeetingUpdatedPayload represents the payload for meeting.updated webhook events
type ZoomMeetingUpdatedPayload struct {
	Object struct {
		UUID      string     `json:"uuid"`
		ID        string     `json:"id"`
		HostID    string     `json:"host_id"`
		Topic     string     `json:"topic"`
		Type      int        `json:"type"`
		StartTime *time.Time `json:"start_time,omitempty"`
		Duration  *int       `json:"duration,omitempty"`
		Timezone  string     `json:"timezone,omitempty"`
		Agenda    *string    `json:"agenda,omitempty"`
	} `json:"object"`
}

// ZoomMeetingDeletedPayload represents the payload for meeting.deleted webhook events
type ZoomMeetingDeletedPayload struct {
	Object struct {
		UUID   string `json:"uuid"`
		ID     string `json:"id"` // Zoom sends as string in webhook events
		HostID string `json:"host_id"`
		Topic  string `json:"topic"`
		Type   int    `json:"type"`
	} `json:"object"`
}

// ZoomParticipantJoinedPayload represents the payload for meeting.participant_joined webhook events
type ZoomParticipantJoinedPayload struct {
	Object struct {
		UUID        string    `json:"uuid"`
		ID          string    `json:"id"` // Zoom sends as string for participant events
		HostID      string    `json:"host_id"`
		Topic       string    `json:"topic"`
		Type        int       `json:"type"`
		StartTime   time.Time `json:"start_time"`
		Timezone    string    `json:"timezone"`
		Participant struct {
			UserID   string    `json:"user_id"`
			UserName string    `json:"user_name"`
			ID       string    `json:"id"`
			JoinTime time.Time `json:"join_time"`
			Email    string    `json:"email"`
		} `json:"participant"`
	} `json:"object"`
}

// ZoomParticipantLeftPayload represents the payload for meeting.participant_left webhook events
type ZoomParticipantLeftPayload struct {
	Object struct {
		UUID        string    `json:"uuid"`
		ID          string    `json:"id"` // Zoom sends as string for participant events
		HostID      string    `json:"host_id"`
		Topic       string    `json:"topic"`
		Type        int       `json:"type"`
		StartTime   time.Time `json:"start_time"`
		Timezone    string    `json:"timezone"`
		Participant struct {
			UserID    string    `json:"user_id"`
			UserName  string    `json:"user_name"`
			ID        string    `json:"id"`
			LeaveTime time.Time `json:"leave_time"`
			Duration  int       `json:"duration"`
			Email     string    `json:"email"`
		} `json:"participant"`
	} `json:"object"`
}

// ZoomRecordingCompletedPayload represents the payload for recording.completed webhook events
type ZoomRecordingCompletedPayload struct {
	Object struct {
		UUID           string          `json:"uuid"`
		ID             int64           `json:"id"`
		HostID         string          `json:"host_id"`
		Topic          string          `json:"topic"`
		Type           int             `json:"type"`
		StartTime      time.Time       `json:"start_time"`
		Timezone       string          `json:"timezone"`
		Duration       int             `json:"duration"`
		ShareURL       string          `json:"share_url"`
		TotalSize      int64           `json:"total_size"`
		RecordingCount int             `json:"recording_count"`
		RecordingFiles []RecordingFile `json:"recording_files"`
	} `json:"object"`
}

// ZoomSummaryCompletedPayload represents the payload for meeting.summary_completed webhook events
type ZoomSummaryCompletedPayload struct {
	Object struct {
		UUID      string    `json:"uuid"`
		ID        int64     `json:"id"`
		HostID    string    `json:"host_id"`
		Topic     string    `json:"topic"`
		Type      int       `json:"type"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
		Duration  int       `json:"duration"`
		Timezone  string    `json:"timezone"`
		Summary   struct {
			SummaryStartTime time.Time `json:"summary_start_time"`
			SummaryEndTime   time.Time `json:"summary_end_time"`
			NextSteps        []string  `json:"next_steps"`
			KeyPoints        []string  `json:"key_points"`
		} `json:"summary"`
	} `json:"object"`
}

// RecordingFile represents a recording file in webhook payloads
type RecordingFile struct {
	ID             string    `json:"id"`
	MeetingID      string    `json:"meeting_id"`
	RecordingStart time.Time `json:"recording_start"`
	RecordingEnd   time.Time `json:"recording_end"`
	FileType       string    `json:"file_type"`
	FileSize       int64     `json:"file_size"`
	FileExtension  string    `json:"file_extension"`
	PlayURL        string    `json:"play_url"`
	DownloadURL    string    `json:"download_url"`
	Status         string    `json:"status"`
	RecordingType  string    `json:"recording_type"`
}

// ParsePayload unmarshals the raw payload into the given typed payload.
func (e *ZoomWebhookEvent) ParsePayload(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("webhook event %q has no payload", e.Event)
	}
	return json.Unmarshal(e.Payload, v)
}
