// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// Meeting type constants for Zoom API
const (
	MeetingTypeInstant   = 1
	MeetingTypeScheduled = 2
)

const (
	// listPageSize is the page size used when listing meetings
	listPageSize = 100
	// maxListPages caps pagination so a misbehaving next_page_token can
	// never loop forever
	maxListPages = 30
)

// CreateMeetingRequest represents the request to create a Zoom meeting
type CreateMeetingRequest struct {
	Topic     string           `json:"topic"`
	Type      int              `json:"type"`
	StartTime string           `json:"start_time,omitempty"`
	Duration  int              `json:"duration,omitempty"`
	Timezone  string           `json:"timezone,omitempty"`
	Agenda    string           `json:"agenda,omitempty"`
	Password  string           `json:"password,omitempty"`
	Settings  *MeetingSettings `json:"settings,omitempty"`
}

// UpdateMeetingRequest represents the request to update a Zoom meeting
type UpdateMeetingRequest struct {
	Topic     string           `json:"topic,omitempty"`
	Type      int              `json:"type,omitempty"`
	StartTime string           `json:"start_time,omitempty"`
	Duration  int              `json:"duration,omitempty"`
	Timezone  string           `json:"timezone,omitempty"`
	Agenda    string           `json:"agenda,omitempty"`
	Settings  *MeetingSettings `json:"settings,omitempty"`
}

// MeetingSettings represents Zoom meeting settings
type MeetingSettings struct {
	HostVideo        bool   `json:"host_video"`
	ParticipantVideo bool   `json:"participant_video"`
	JoinBeforeHost   bool   `json:"join_before_host"`
	MuteUponEntry    bool   `json:"mute_upon_entry"`
	WaitingRoom      bool   `json:"waiting_room"`
	AutoRecording    string `json:"auto_recording,omitempty"`
	Audio            string `json:"audio,omitempty"`
}

// MeetingResponse represents a Zoom meeting as returned by create/get
type MeetingResponse struct {
	ID           int64            `json:"id"`
	UUID         string           `json:"uuid"`
	HostID       string           `json:"host_id"`
	HostEmail    string           `json:"host_email"`
	Topic        string           `json:"topic"`
	Type         int              `json:"type"`
	Status       string           `json:"status"`
	StartTime    string           `json:"start_time"`
	Duration     int              `json:"duration"`
	Timezone     string           `json:"timezone"`
	Agenda       string           `json:"agenda"`
	CreatedAt    string           `json:"created_at"`
	StartURL     string           `json:"start_url"`
	JoinURL      string           `json:"join_url"`
	Password     string           `json:"password"`
	Settings     *MeetingSettings `json:"settings"`
}

// MeetingListItem is one entry of the meeting list endpoint. The list
// endpoint returns a trimmed view without start_url or settings.
type MeetingListItem struct {
	ID        int64  `json:"id"`
	UUID      string `json:"uuid"`
	HostID    string `json:"host_id"`
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`
	Agenda    string `json:"agenda"`
	JoinURL   string `json:"join_url"`
	CreatedAt string `json:"created_at"`
}

// ListMeetingsResponse represents one page of the meeting list endpoint
type ListMeetingsResponse struct {
	PageSize      int               `json:"page_size"`
	TotalRecords  int               `json:"total_records"`
	NextPageToken string            `json:"next_page_token"`
	Meetings      []MeetingListItem `json:"meetings"`
}

// ParticipantItem is one participant of a past meeting report
type ParticipantItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserEmail string `json:"user_email"`
	JoinTime  string `json:"join_time"`
	LeaveTime string `json:"leave_time"`
	Duration  int    `json:"duration"` // seconds
}

// ParticipantsResponse represents one page of the past participants endpoint
type ParticipantsResponse struct {
	PageSize      int               `json:"page_size"`
	TotalRecords  int               `json:"total_records"`
	NextPageToken string            `json:"next_page_token"`
	Participants  []ParticipantItem `json:"participants"`
}

// RecordingsResponse represents the cloud recordings of a meeting
type RecordingsResponse struct {
	ID             int64               `json:"id"`
	UUID           string              `json:"uuid"`
	Topic          string              `json:"topic"`
	StartTime      string              `json:"start_time"`
	TotalSize      int64               `json:"total_size"`
	ShareURL       string              `json:"share_url"`
	RecordingFiles []RecordingFileItem `json:"recording_files"`
}

// RecordingFileItem is one file of a recording set
type RecordingFileItem struct {
	ID            string `json:"id"`
	FileType      string `json:"file_type"`
	FileSize      int64  `json:"file_size"`
	PlayURL       string `json:"play_url"`
	DownloadURL   string `json:"download_url"`
	RecordingType string `json:"recording_type"`
	Status        string `json:"status"`
}

// CreateMeeting creates a new meeting for the account owner.
// This is a pure API call with no business logic
func (c *Client) CreateMeeting(ctx context.Context, request *CreateMeetingRequest) (*MeetingResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/users/me/meetings", request)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var meetingResp MeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&meetingResp); err != nil {
		return nil, fmt.Errorf("failed to decode meeting response: %w", err)
	}

	return &meetingResp, nil
}

// GetMeeting retrieves a single meeting by ID.
// This is a pure API call with no business logic
func (c *Client) GetMeeting(ctx context.Context, meetingID string) (*MeetingResponse, error) {
	path := fmt.Sprintf("/meetings/%s", meetingID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError(fmt.Sprintf("meeting %s not found on Zoom", meetingID))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var meetingResp MeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&meetingResp); err != nil {
		return nil, fmt.Errorf("failed to decode meeting response: %w", err)
	}

	return &meetingResp, nil
}

// UpdateMeeting updates an existing meeting in Zoom
// This is a pure API call with no business logic
func (c *Client) UpdateMeeting(ctx context.Context, meetingID string, request *UpdateMeetingRequest) error {
	path := fmt.Sprintf("/meetings/%s", meetingID)
	resp, err := c.doRequest(ctx, http.MethodPatch, path, request)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return domain.NewNotFoundError(fmt.Sprintf("meeting %s not found on Zoom", meetingID))
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp.StatusCode, body)
	}

	return nil
}

// DeleteMeeting deletes a meeting from Zoom. A meeting that is already
// gone (404) is treated as deleted so the operation stays idempotent.
func (c *Client) DeleteMeeting(ctx context.Context, meetingID string) error {
	path := fmt.Sprintf("/meetings/%s", meetingID)
	resp, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		slog.DebugContext(ctx, "Zoom meeting already deleted", "meeting_id", meetingID)
		return nil
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp.StatusCode, body)
	}

	return nil
}

// ListMeetings retrieves all scheduled meetings of the account owner,
// following next_page_token pagination.
func (c *Client) ListMeetings(ctx context.Context) ([]MeetingListItem, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_meetings"))

	var meetings []MeetingListItem
	nextPageToken := ""

	for page := 0; page < maxListPages; page++ {
		path := fmt.Sprintf("/users/me/meetings?type=upcoming&page_size=%d", listPageSize)
		if nextPageToken != "" {
			path += "&next_page_token=" + url.QueryEscape(nextPageToken)
		}

		resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			return nil, parseErrorResponse(resp.StatusCode, body)
		}

		var pageResp ListMeetingsResponse
		err = json.NewDecoder(resp.Body).Decode(&pageResp)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode meeting list response: %w", err)
		}

		meetings = append(meetings, pageResp.Meetings...)

		nextPageToken = pageResp.NextPageToken
		if nextPageToken == "" {
			break
		}
	}

	slog.DebugContext(ctx, "retrieved Zoom meetings", "meeting_count", len(meetings))

	return meetings, nil
}

// GetPastParticipants retrieves the participant report of a past meeting,
// following next_page_token pagination.
func (c *Client) GetPastParticipants(ctx context.Context, meetingID string) ([]ParticipantItem, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_past_participants"))

	var participants []ParticipantItem
	nextPageToken := ""

	for page := 0; page < maxListPages; page++ {
		path := fmt.Sprintf("/past_meetings/%s/participants?page_size=%d", meetingID, listPageSize)
		if nextPageToken != "" {
			path += "&next_page_token=" + url.QueryEscape(nextPageToken)
		}

		resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusNotFound {
			_ = resp.Body.Close()
			return nil, domain.NewNotFoundError(fmt.Sprintf("past meeting %s not found on Zoom", meetingID))
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			return nil, parseErrorResponse(resp.StatusCode, body)
		}

		var pageResp ParticipantsResponse
		err = json.NewDecoder(resp.Body).Decode(&pageResp)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode participants response: %w", err)
		}

		participants = append(participants, pageResp.Participants...)

		nextPageToken = pageResp.NextPageToken
		if nextPageToken == "" {
			break
		}
	}

	return participants, nil
}

// GetRecordings retrieves the cloud recording set of a meeting.
func (c *Client) GetRecordings(ctx context.Context, meetingID string) (*RecordingsResponse, error) {
	path := fmt.Sprintf("/meetings/%s/recordings", meetingID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError(fmt.Sprintf("no recordings for meeting %s", meetingID))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var recordingsResp RecordingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&recordingsResp); err != nil {
		return nil, fmt.Errorf("failed to decode recordings response: %w", err)
	}

	return &recordingsResp, nil
}
