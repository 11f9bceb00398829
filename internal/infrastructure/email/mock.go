// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"github.com/stretchr/testify/mock"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
)

// MockICSGenerator is a mock implementation of MeetingICSGenerator
type MockICSGenerator struct {
	mock.Mock
}

// GenerateMeetingInvitationICS is a mock method
func (m *MockICSGenerator) GenerateMeetingInvitationICS(params ICSMeetingInvitationParams) (string, error) {
	args := m.Called(params)
	return args.String(0), args.Error(1)
}

// MockTemplateManager is a mock implementation of MeetingTemplateManager
type MockTemplateManager struct {
	mock.Mock
}

// RenderInvitation is a mock method
func (m *MockTemplateManager) RenderInvitation(data domain.EmailInvitation) (*RenderedEmail, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RenderedEmail), args.Error(1)
}

// RenderReminder is a mock method
func (m *MockTemplateManager) RenderReminder(data domain.EmailReminder) (*RenderedEmail, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RenderedEmail), args.Error(1)
}

// RenderHostConfirmation is a mock method
func (m *MockTemplateManager) RenderHostConfirmation(data domain.EmailHostConfirmation) (*RenderedEmail, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RenderedEmail), args.Error(1)
}

// RenderSummaryReady is a mock method
func (m *MockTemplateManager) RenderSummaryReady(data domain.EmailSummaryReady) (*RenderedEmail, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RenderedEmail), args.Error(1)
}
