// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
)

// MockMeetingRepository implements MeetingRepository for testing
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) Exists(ctx context.Context, meetingUID string) (bool, error) {
	args := m.Called(ctx, meetingUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingRepository) Get(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Meeting), args.Get(1).(uint64), args.Error(2)
}

func (m *MockMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	args := m.Called(ctx, meeting, revision)
	return args.Error(0)
}

func (m *MockMeetingRepository) Delete(ctx context.Context, meetingUID string, revision uint64) error {
	args := m.Called(ctx, meetingUID, revision)
	return args.Error(0)
}

func (m *MockMeetingRepository) GetByRemoteID(ctx context.Context, remoteID string) (*models.Meeting, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) ListAll(ctx context.Context) ([]*models.Meeting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Meeting), args.Error(1)
}

// MockAttendeeRepository implements AttendeeRepository for testing
type MockAttendeeRepository struct {
	mock.Mock
}

func (m *MockAttendeeRepository) Create(ctx context.Context, attendee *models.Attendee) error {
	args := m.Called(ctx, attendee)
	return args.Error(0)
}

func (m *MockAttendeeRepository) Get(ctx context.Context, attendeeUID string) (*models.Attendee, error) {
	args := m.Called(ctx, attendeeUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendee), args.Error(1)
}

func (m *MockAttendeeRepository) GetWithRevision(ctx context.Context, attendeeUID string) (*models.Attendee, uint64, error) {
	args := m.Called(ctx, attendeeUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Attendee), args.Get(1).(uint64), args.Error(2)
}

func (m *MockAttendeeRepository) Update(ctx context.Context, attendee *models.Attendee, revision uint64) error {
	args := m.Called(ctx, attendee, revision)
	return args.Error(0)
}

func (m *MockAttendeeRepository) Delete(ctx context.Context, attendeeUID string, revision uint64) error {
	args := m.Called(ctx, attendeeUID, revision)
	return args.Error(0)
}

func (m *MockAttendeeRepository) ListByMeeting(ctx context.Context, meetingUID string) ([]*models.Attendee, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attendee), args.Error(1)
}

func (m *MockAttendeeRepository) GetByMeetingAndEmail(ctx context.Context, meetingUID, email string) (*models.Attendee, error) {
	args := m.Called(ctx, meetingUID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendee), args.Error(1)
}

// MockCredentialRepository implements CredentialRepository for testing
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) Save(ctx context.Context, credential *models.Credential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *MockCredentialRepository) Get(ctx context.Context, credentialUID string) (*models.Credential, error) {
	args := m.Called(ctx, credentialUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credential), args.Error(1)
}

func (m *MockCredentialRepository) GetWithRevision(ctx context.Context, credentialUID string) (*models.Credential, uint64, error) {
	args := m.Called(ctx, credentialUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Credential), args.Get(1).(uint64), args.Error(2)
}

func (m *MockCredentialRepository) Update(ctx context.Context, credential *models.Credential, revision uint64) error {
	args := m.Called(ctx, credential, revision)
	return args.Error(0)
}

// MockMeetingGateway implements MeetingGateway for testing
type MockMeetingGateway struct {
	mock.Mock
}

func (m *MockMeetingGateway) CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.RemoteMeeting, error) {
	args := m.Called(ctx, meeting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RemoteMeeting), args.Error(1)
}

func (m *MockMeetingGateway) UpdateMeeting(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingGateway) DeleteMeeting(ctx context.Context, remoteID string) error {
	args := m.Called(ctx, remoteID)
	return args.Error(0)
}

func (m *MockMeetingGateway) GetMeeting(ctx context.Context, remoteID string) (*models.RemoteMeeting, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RemoteMeeting), args.Error(1)
}

func (m *MockMeetingGateway) ListMeetings(ctx context.Context) ([]*models.RemoteMeeting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RemoteMeeting), args.Error(1)
}

func (m *MockMeetingGateway) GetParticipants(ctx context.Context, remoteID string) ([]*models.RemoteParticipant, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RemoteParticipant), args.Error(1)
}

func (m *MockMeetingGateway) GetRecordings(ctx context.Context, remoteID string) (*models.RemoteRecording, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RemoteRecording), args.Error(1)
}

func (m *MockMeetingGateway) TestConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendInvitation(ctx context.Context, invitation EmailInvitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *MockEmailService) SendReminder(ctx context.Context, reminder EmailReminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

func (m *MockEmailService) SendHostConfirmation(ctx context.Context, confirmation EmailHostConfirmation) error {
	args := m.Called(ctx, confirmation)
	return args.Error(0)
}

func (m *MockEmailService) SendSummaryReady(ctx context.Context, summary EmailSummaryReady) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

// MockMessageSender implements MessageSender for testing
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) SendMeetingCreated(ctx context.Context, data models.MeetingEventMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageSender) SendMeetingUpdated(ctx context.Context, data models.MeetingEventMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageSender) SendMeetingDeleted(ctx context.Context, data models.MeetingEventMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageSender) SendMeetingStateChanged(ctx context.Context, data models.MeetingEventMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageSender) SendAttendeeUpdated(ctx context.Context, data models.AttendeeEventMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageSender) SendSyncCompleted(ctx context.Context, data models.SyncEventMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}
