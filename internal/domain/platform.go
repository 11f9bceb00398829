// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
)

// MeetingGateway defines the interface for the remote meeting platform.
type MeetingGateway interface {
	// CreateMeeting creates a meeting on the remote platform and returns
	// the remote representation, including the assigned ID and URLs.
	CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.RemoteMeeting, error)

	// UpdateMeeting pushes local changes to the remote meeting.
	UpdateMeeting(ctx context.Context, meeting *models.Meeting) error

	// DeleteMeeting removes the remote meeting. A meeting that is already
	// gone remotely is not an error.
	DeleteMeeting(ctx context.Context, remoteID string) error

	// GetMeeting fetches one remote meeting by ID.
	GetMeeting(ctx context.Context, remoteID string) (*models.RemoteMeeting, error)

	// ListMeetings fetches all scheduled meetings of the account,
	// following pagination.
	ListMeetings(ctx context.Context) ([]*models.RemoteMeeting, error)

	// GetParticipants fetches the participant report of a past meeting.
	GetParticipants(ctx context.Context, remoteID string) ([]*models.RemoteParticipant, error)

	// GetRecordings fetches the cloud recording set of a meeting.
	GetRecordings(ctx context.Context, remoteID string) (*models.RemoteRecording, error)

	// TestConnection verifies that the stored credential can reach the
	// platform API.
	TestConnection(ctx context.Context) error
}
