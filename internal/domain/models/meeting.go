// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"strings"
	"time"
)

// MeetingStatus represents the local lifecycle state of a meeting.
type MeetingStatus string

const (
	// MeetingStatusScheduled is a meeting that has not started yet
	MeetingStatusScheduled MeetingStatus = "scheduled"
	// MeetingStatusActive is a meeting currently in progress
	MeetingStatusActive MeetingStatus = "active"
	// MeetingStatusFinished is a meeting that has ended
	MeetingStatusFinished MeetingStatus = "finished"
	// MeetingStatusCancelled is a meeting that was cancelled before it ran
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// Remote platform meeting types, matching the Zoom API numeric values.
const (
	MeetingTypeInstant   = 1
	MeetingTypeScheduled = 2
)

// StatusFromRemote maps a remote platform status string onto the local
// lifecycle. The bool reports whether the remote value was recognized;
// unknown values leave the local status untouched.
func StatusFromRemote(remote string) (MeetingStatus, bool) {
	switch strings.ToLower(remote) {
	case "waiting", "scheduled":
		return MeetingStatusScheduled, true
	case "started":
		return MeetingStatusActive, true
	case "finished", "ended":
		return MeetingStatusFinished, true
	case "cancelled", "canceled":
		return MeetingStatusCancelled, true
	default:
		return "", false
	}
}

// AttendanceStats are the denormalized attendee counters stored on the
// meeting record. Rate is confirmed/invited as a percentage; marking an
// attendee attended does not change it.
type AttendanceStats struct {
	Invited   int     `json:"invited"`
	Confirmed int     `json:"confirmed"`
	Declined  int     `json:"declined"`
	Attended  int     `json:"attended"`
	NoShow    int     `json:"no_show"`
	Rate      float64 `json:"rate"`
}

// MeetingSettings are the per-meeting overrides of the account defaults.
type MeetingSettings struct {
	AutoRecord     bool `json:"auto_record"`
	WaitingRoom    bool `json:"waiting_room"`
	JoinBeforeHost bool `json:"join_before_host"`
	MuteOnEntry    bool `json:"mute_on_entry"`
}

// Meeting is the key-value store representation of a CRM meeting linked
// to a remote Zoom meeting.
type Meeting struct {
	UID              string          `json:"uid"`
	RemoteID         string          `json:"remote_id,omitempty"`
	RemoteUUID       string          `json:"remote_uuid,omitempty"`
	Topic            string          `json:"topic"`
	Agenda           string          `json:"agenda,omitempty"`
	Type             int             `json:"type"`
	StartTime        time.Time       `json:"start_time"`
	Duration         int             `json:"duration"`
	Timezone         string          `json:"timezone,omitempty"`
	Status           MeetingStatus   `json:"status"`
	HostEmail        string          `json:"host_email,omitempty"`
	JoinURL          string          `json:"join_url,omitempty"`
	StartURL         string          `json:"start_url,omitempty"`
	Password         string          `json:"password,omitempty"`
	LinkedEntity     string          `json:"linked_entity,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Settings         MeetingSettings `json:"settings"`
	Stats            AttendanceStats `json:"stats"`
	ActualStart      *time.Time      `json:"actual_start,omitempty"`
	ActualEnd        *time.Time      `json:"actual_end,omitempty"`
	RecordingURL     string          `json:"recording_url,omitempty"`
	RecordingPlayURL string          `json:"recording_play_url,omitempty"`
	SyncConflict     bool            `json:"sync_conflict,omitempty"`
	LastSyncedAt     *time.Time      `json:"last_synced_at,omitempty"`
	ReminderSentAt   *time.Time      `json:"reminder_sent_at,omitempty"`
	CreatedAt        *time.Time      `json:"created_at,omitempty"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}

// IsLinked reports whether the meeting is bound to a remote meeting.
func (m *Meeting) IsLinked() bool {
	return m != nil && m.RemoteID != ""
}

// DurationOrDefault returns the meeting duration, falling back to 60
// minutes when unset.
func (m *Meeting) DurationOrDefault() int {
	if m == nil || m.Duration <= 0 {
		return 60
	}
	return m.Duration
}

// Tags generates a consistent set of tags for the meeting.
func (m *Meeting) Tags() []string {
	tags := []string{}

	if m == nil {
		return nil
	}

	if m.UID != "" {
		// without prefix
		tags = append(tags, m.UID)
		// with prefix
		tags = append(tags, fmt.Sprintf("meeting_uid:%s", m.UID))
	}

	if m.RemoteID != "" {
		tags = append(tags, fmt.Sprintf("remote_id:%s", m.RemoteID))
	}

	if m.Topic != "" {
		tags = append(tags, fmt.Sprintf("topic:%s", m.Topic))
	}

	return tags
}
