// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package models

import "time"

// RemoteMeeting is the platform-neutral view of a meeting fetched from
// the remote platform.
type RemoteMeeting struct {
	ID        string          `json:"id"`
	UUID      string          `json:"uuid,omitempty"`
	Topic     string          `json:"topic"`
	Agenda    string          `json:"agenda,omitempty"`
	Type      int             `json:"type"`
	Status    string          `json:"status,omitempty"`
	StartTime time.Time       `json:"start_time"`
	Duration  int             `json:"duration"`
	Timezone  string          `json:"timezone,omitempty"`
	HostEmail string          `json:"host_email,omitempty"`
	JoinURL   string          `json:"join_url,omitempty"`
	StartURL  string          `json:"start_url,omitempty"`
	Password  string          `json:"password,omitempty"`
	Settings  MeetingSettings `json:"settings"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

// RemoteParticipant is a participant record from a past remote meeting.
type RemoteParticipant struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	JoinTime  time.Time `json:"join_time"`
	LeaveTime time.Time `json:"leave_time,omitempty"`
	Duration  int       `json:"duration"` // seconds, as the platform reports it
}

// RemoteRecording is the cloud recording set of a remote meeting.
type RemoteRecording struct {
	MeetingID string    `json:"meeting_id"`
	ShareURL  string    `json:"share_url,omitempty"`
	PlayURL   string    `json:"play_url,omitempty"`
	TotalSize int64     `json:"total_size,omitempty"`
	StartTime time.Time `json:"start_time,omitempty"`
}
