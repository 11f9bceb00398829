// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects that the zoom sync service sends messages about.
const (
	// MeetingCreatedSubject is the subject for meeting creation events.
	// The subject is of the form: zoomsync.meeting.created
	MeetingCreatedSubject = "zoomsync.meeting.created"

	// MeetingUpdatedSubject is the subject for meeting update events.
	// The subject is of the form: zoomsync.meeting.updated
	MeetingUpdatedSubject = "zoomsync.meeting.updated"

	// MeetingDeletedSubject is the subject for meeting deletion events.
	// The subject is of the form: zoomsync.meeting.deleted
	MeetingDeletedSubject = "zoomsync.meeting.deleted"

	// MeetingStateChangedSubject is the subject for meeting lifecycle
	// transitions (scheduled, active, finished, cancelled).
	// The subject is of the form: zoomsync.meeting.state_changed
	MeetingStateChangedSubject = "zoomsync.meeting.state_changed"

	// AttendeeUpdatedSubject is the subject for attendee status changes.
	// The subject is of the form: zoomsync.attendee.updated
	AttendeeUpdatedSubject = "zoomsync.attendee.updated"

	// SyncCompletedSubject is the subject for reconciliation run results.
	// The subject is of the form: zoomsync.sync.completed
	SyncCompletedSubject = "zoomsync.sync.completed"
)

// MeetingEventMessage is the payload published on meeting subjects.
type MeetingEventMessage struct {
	MeetingUID string        `json:"meeting_uid"`
	RemoteID   string        `json:"remote_id,omitempty"`
	Topic      string        `json:"topic,omitempty"`
	Status     MeetingStatus `json:"status,omitempty"`
	PrevStatus MeetingStatus `json:"prev_status,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// AttendeeEventMessage is the payload published on attendee subjects.
type AttendeeEventMessage struct {
	AttendeeUID string         `json:"attendee_uid"`
	MeetingUID  string         `json:"meeting_uid"`
	Email       string         `json:"email,omitempty"`
	Status      AttendeeStatus `json:"status"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// SyncEventMessage is the payload published when a reconciliation run
// finishes.
type SyncEventMessage struct {
	Result     SyncResult `json:"result"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}
