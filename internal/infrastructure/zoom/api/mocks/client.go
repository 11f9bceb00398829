// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

// Package mocks provides mock implementations of the Zoom API client.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/zoom/api"
)

// MockClientAPI implements api.ClientAPI for testing
type MockClientAPI struct {
	mock.Mock
}

// Ensure that MockClientAPI implements api.ClientAPI
var _ api.ClientAPI = (*MockClientAPI)(nil)

func (m *MockClientAPI) CreateMeeting(ctx context.Context, request *api.CreateMeetingRequest) (*api.MeetingResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.MeetingResponse), args.Error(1)
}

func (m *MockClientAPI) GetMeeting(ctx context.Context, meetingID string) (*api.MeetingResponse, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.MeetingResponse), args.Error(1)
}

func (m *MockClientAPI) UpdateMeeting(ctx context.Context, meetingID string, request *api.UpdateMeetingRequest) error {
	args := m.Called(ctx, meetingID, request)
	return args.Error(0)
}

func (m *MockClientAPI) DeleteMeeting(ctx context.Context, meetingID string) error {
	args := m.Called(ctx, meetingID)
	return args.Error(0)
}

func (m *MockClientAPI) ListMeetings(ctx context.Context) ([]api.MeetingListItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.MeetingListItem), args.Error(1)
}

func (m *MockClientAPI) GetPastParticipants(ctx context.Context, meetingID string) ([]api.ParticipantItem, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.ParticipantItem), args.Error(1)
}

func (m *MockClientAPI) GetRecordings(ctx context.Context, meetingID string) (*api.RecordingsResponse, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.RecordingsResponse), args.Error(1)
}

func (m *MockClientAPI) GetCurrentUser(ctx context.Context) (*api.ZoomUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ZoomUser), args.Error(1)
}
