// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"strings"
	"time"
)

// AttendeeStatus represents the RSVP / attendance state of an attendee.
type AttendeeStatus string

const (
	// AttendeeStatusInvited is the initial state after an attendee is added
	AttendeeStatusInvited AttendeeStatus = "invited"
	// AttendeeStatusConfirmed means the attendee accepted the invitation
	AttendeeStatusConfirmed AttendeeStatus = "confirmed"
	// AttendeeStatusDeclined means the attendee declined the invitation
	AttendeeStatusDeclined AttendeeStatus = "declined"
	// AttendeeStatusAttended means the attendee was present; only reachable
	// from confirmed
	AttendeeStatusAttended AttendeeStatus = "attended"
	// AttendeeStatusNoShow means the attendee never joined the meeting
	AttendeeStatusNoShow AttendeeStatus = "no_show"
)

// Attendee is the key-value store representation of a meeting attendee.
type Attendee struct {
	UID             string         `json:"uid"`
	MeetingUID      string         `json:"meeting_uid"`
	Email           string         `json:"email"`
	FirstName       string         `json:"first_name,omitempty"`
	LastName        string         `json:"last_name,omitempty"`
	Status          AttendeeStatus `json:"status"`
	JoinedAt        *time.Time     `json:"joined_at,omitempty"`
	LeftAt          *time.Time     `json:"left_at,omitempty"`
	DurationMinutes int            `json:"duration_minutes,omitempty"`
	InvitedAt       *time.Time     `json:"invited_at,omitempty"`
	RespondedAt     *time.Time     `json:"responded_at,omitempty"`
	CreatedAt       *time.Time     `json:"created_at,omitempty"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`
}

// GetFullName returns the attendee's full name by combining FirstName and
// LastName. The result is trimmed of leading/trailing whitespace.
func (a *Attendee) GetFullName() string {
	if a == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", a.FirstName, a.LastName))
}

// DisplayName returns the full name when present, otherwise the email.
func (a *Attendee) DisplayName() string {
	if name := a.GetFullName(); name != "" {
		return name
	}
	if a == nil {
		return ""
	}
	return a.Email
}

// Tags generates a consistent set of tags for the attendee.
func (a *Attendee) Tags() []string {
	tags := []string{}

	if a == nil {
		return nil
	}

	if a.UID != "" {
		// without prefix
		tags = append(tags, a.UID)
		// with prefix
		tags = append(tags, fmt.Sprintf("attendee_uid:%s", a.UID))
	}

	if a.MeetingUID != "" {
		tags = append(tags, fmt.Sprintf("meeting_uid:%s", a.MeetingUID))
	}

	if a.Email != "" {
		tags = append(tags, fmt.Sprintf("email:%s", a.Email))
	}

	return tags
}

// CanTransitionTo reports whether the status change is allowed by the
// attendance state machine. Attended is only reachable from confirmed.
func (a *Attendee) CanTransitionTo(next AttendeeStatus) bool {
	if a == nil {
		return false
	}
	switch next {
	case AttendeeStatusAttended:
		return a.Status == AttendeeStatusConfirmed
	case AttendeeStatusNoShow:
		return a.Status == AttendeeStatusInvited || a.Status == AttendeeStatusConfirmed
	case AttendeeStatusConfirmed, AttendeeStatusDeclined:
		return a.Status != AttendeeStatusAttended
	case AttendeeStatusInvited:
		return false
	default:
		return false
	}
}
