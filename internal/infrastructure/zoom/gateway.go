// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

// Package zoom implements the remote meeting gateway on top of the Zoom
// REST API client.
package zoom

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/zoom/api"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// zoomTimeFormat is the timestamp layout the Zoom API speaks.
const zoomTimeFormat = "2006-01-02T15:04:05Z"

// Gateway implements domain.MeetingGateway against the Zoom API. The API
// client is resolved per call so a credential saved through the API takes
// effect without a restart.
type Gateway struct {
	source ClientSource
}

// Ensure that Gateway implements domain.MeetingGateway
var _ domain.MeetingGateway = (*Gateway)(nil)

// NewGateway creates a gateway around a fixed API client.
func NewGateway(client api.ClientAPI) *Gateway {
	return &Gateway{source: staticClientSource{client: client}}
}

// NewGatewayWithSource creates a gateway that resolves its API client
// through the given source on every call.
func NewGatewayWithSource(source ClientSource) *Gateway {
	return &Gateway{source: source}
}

// CreateMeeting creates the meeting on Zoom and returns the remote view.
func (g *Gateway) CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.RemoteMeeting, error) {
	if meeting == nil {
		return nil, domain.NewValidationError("meeting is required")
	}
	if meeting.Topic == "" {
		return nil, domain.NewValidationError("meeting topic is required")
	}

	request := &api.CreateMeetingRequest{
		Topic:    meeting.Topic,
		Type:     meeting.Type,
		Agenda:   meeting.Agenda,
		Duration: meeting.DurationOrDefault(),
		Timezone: meeting.Timezone,
		Settings: settingsToAPI(meeting.Settings),
	}
	if request.Type == 0 {
		request.Type = api.MeetingTypeScheduled
	}
	// Instant meetings start now; Zoom ignores start_time for them.
	if request.Type == api.MeetingTypeScheduled {
		if meeting.StartTime.IsZero() {
			return nil, domain.NewValidationError("start time is required for scheduled meetings")
		}
		request.StartTime = meeting.StartTime.UTC().Format(zoomTimeFormat)
	}

	client, err := g.source.Client(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := client.CreateMeeting(ctx, request)
	if err != nil {
		return nil, err
	}

	remote := remoteFromResponse(resp)
	slog.InfoContext(ctx, "created Zoom meeting",
		"remote_id", remote.ID,
		"topic", remote.Topic,
	)

	return remote, nil
}

// UpdateMeeting pushes local changes to the remote meeting.
func (g *Gateway) UpdateMeeting(ctx context.Context, meeting *models.Meeting) error {
	if !meeting.IsLinked() {
		return domain.NewValidationError("meeting is not linked to a Zoom meeting")
	}

	request := &api.UpdateMeetingRequest{
		Topic:    meeting.Topic,
		Agenda:   meeting.Agenda,
		Duration: meeting.DurationOrDefault(),
		Timezone: meeting.Timezone,
		Settings: settingsToAPI(meeting.Settings),
	}
	if !meeting.StartTime.IsZero() {
		request.StartTime = meeting.StartTime.UTC().Format(zoomTimeFormat)
	}

	client, err := g.source.Client(ctx)
	if err != nil {
		return err
	}
	return client.UpdateMeeting(ctx, meeting.RemoteID, request)
}

// DeleteMeeting removes the remote meeting; already-deleted is fine.
func (g *Gateway) DeleteMeeting(ctx context.Context, remoteID string) error {
	if remoteID == "" {
		return domain.NewValidationError("remote meeting ID is required")
	}
	client, err := g.source.Client(ctx)
	if err != nil {
		return err
	}
	return client.DeleteMeeting(ctx, remoteID)
}

// GetMeeting fetches one remote meeting by ID.
func (g *Gateway) GetMeeting(ctx context.Context, remoteID string) (*models.RemoteMeeting, error) {
	client, err := g.source.Client(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := client.GetMeeting(ctx, remoteID)
	if err != nil {
		return nil, err
	}
	return remoteFromResponse(resp), nil
}

// ListMeetings fetches all scheduled meetings of the account.
func (g *Gateway) ListMeetings(ctx context.Context) ([]*models.RemoteMeeting, error) {
	client, err := g.source.Client(ctx)
	if err != nil {
		return nil, err
	}
	items, err := client.ListMeetings(ctx)
	if err != nil {
		return nil, err
	}

	meetings := make([]*models.RemoteMeeting, 0, len(items))
	for _, item := range items {
		meetings = append(meetings, remoteFromListItem(item))
	}

	return meetings, nil
}

// GetParticipants fetches the participant report of a past meeting.
func (g *Gateway) GetParticipants(ctx context.Context, remoteID string) ([]*models.RemoteParticipant, error) {
	client, err := g.source.Client(ctx)
	if err != nil {
		return nil, err
	}
	items, err := client.GetPastParticipants(ctx, remoteID)
	if err != nil {
		return nil, err
	}

	participants := make([]*models.RemoteParticipant, 0, len(items))
	for _, item := range items {
		participant := &models.RemoteParticipant{
			ID:       item.ID,
			Name:     item.Name,
			Email:    item.UserEmail,
			Duration: item.Duration,
		}
		participant.JoinTime = parseZoomTime(ctx, item.JoinTime)
		participant.LeaveTime = parseZoomTime(ctx, item.LeaveTime)
		participants = append(participants, participant)
	}

	return participants, nil
}

// GetRecordings fetches the cloud recording set of a meeting.
func (g *Gateway) GetRecordings(ctx context.Context, remoteID string) (*models.RemoteRecording, error) {
	client, err := g.source.Client(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := client.GetRecordings(ctx, remoteID)
	if err != nil {
		return nil, err
	}

	recording := &models.RemoteRecording{
		MeetingID: strconv.FormatInt(resp.ID, 10),
		ShareURL:  resp.ShareURL,
		TotalSize: resp.TotalSize,
		StartTime: parseZoomTime(ctx, resp.StartTime),
	}
	// Prefer the playable MP4 over audio-only or transcript files.
	for _, file := range resp.RecordingFiles {
		if file.FileType == "MP4" && file.PlayURL != "" {
			recording.PlayURL = file.PlayURL
			break
		}
	}
	if recording.PlayURL == "" {
		for _, file := range resp.RecordingFiles {
			if file.PlayURL != "" {
				recording.PlayURL = file.PlayURL
				break
			}
		}
	}

	return recording, nil
}

// TestConnection verifies the credential by fetching the account owner.
func (g *Gateway) TestConnection(ctx context.Context) error {
	client, err := g.source.Client(ctx)
	if err != nil {
		return err
	}
	user, err := client.GetCurrentUser(ctx)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Zoom connection verified",
		"user_id", user.ID,
		"email", user.Email,
	)

	return nil
}

// settingsToAPI converts local meeting settings to the API shape.
func settingsToAPI(settings models.MeetingSettings) *api.MeetingSettings {
	autoRecording := "none"
	if settings.AutoRecord {
		autoRecording = "cloud"
	}
	return &api.MeetingSettings{
		JoinBeforeHost: settings.JoinBeforeHost,
		MuteUponEntry:  settings.MuteOnEntry,
		WaitingRoom:    settings.WaitingRoom,
		AutoRecording:  autoRecording,
	}
}

// settingsFromAPI converts API meeting settings to the local shape.
func settingsFromAPI(settings *api.MeetingSettings) models.MeetingSettings {
	if settings == nil {
		return models.MeetingSettings{}
	}
	return models.MeetingSettings{
		AutoRecord:     settings.AutoRecording == "cloud" || settings.AutoRecording == "local",
		WaitingRoom:    settings.WaitingRoom,
		JoinBeforeHost: settings.JoinBeforeHost,
		MuteOnEntry:    settings.MuteUponEntry,
	}
}

func remoteFromResponse(resp *api.MeetingResponse) *models.RemoteMeeting {
	ctx := context.Background()
	return &models.RemoteMeeting{
		ID:        strconv.FormatInt(resp.ID, 10),
		UUID:      resp.UUID,
		Topic:     resp.Topic,
		Agenda:    resp.Agenda,
		Type:      resp.Type,
		Status:    resp.Status,
		StartTime: parseZoomTime(ctx, resp.StartTime),
		Duration:  resp.Duration,
		Timezone:  resp.Timezone,
		HostEmail: resp.HostEmail,
		JoinURL:   resp.JoinURL,
		StartURL:  resp.StartURL,
		Password:  resp.Password,
		Settings:  settingsFromAPI(resp.Settings),
		CreatedAt: parseZoomTime(ctx, resp.CreatedAt),
	}
}

func remoteFromListItem(item api.MeetingListItem) *models.RemoteMeeting {
	ctx := context.Background()
	return &models.RemoteMeeting{
		ID:        strconv.FormatInt(item.ID, 10),
		UUID:      item.UUID,
		Topic:     item.Topic,
		Agenda:    item.Agenda,
		Type:      item.Type,
		StartTime: parseZoomTime(ctx, item.StartTime),
		Duration:  item.Duration,
		Timezone:  item.Timezone,
		JoinURL:   item.JoinURL,
		CreatedAt: parseZoomTime(ctx, item.CreatedAt),
	}
}

// parseZoomTime parses a Zoom API timestamp, tolerating the empty string.
func parseZoomTime(ctx context.Context, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		slog.WarnContext(ctx, "unparseable Zoom timestamp",
			"value", value,
			logging.ErrKey, fmt.Errorf("parse time: %w", err),
		)
		return time.Time{}
	}
	return parsed
}
