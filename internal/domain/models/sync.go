// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package models

// SyncResult tallies the outcome of one reconciliation run.
type SyncResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Enriched  int `json:"enriched"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
}

// Total returns the number of remote meetings the run looked at.
func (r SyncResult) Total() int {
	return r.Created + r.Updated + r.Unchanged + r.Conflicts + r.Failed
}

// Add folds another result into this one.
func (r *SyncResult) Add(other SyncResult) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Unchanged += other.Unchanged
	r.Enriched += other.Enriched
	r.Conflicts += other.Conflicts
	r.Failed += other.Failed
}

// NotificationEvent selects which email template a notification uses.
type NotificationEvent string

const (
	// NotificationInvited is sent when an attendee is added to a meeting
	NotificationInvited NotificationEvent = "invited"
	// NotificationReminder is sent shortly before the meeting starts
	NotificationReminder NotificationEvent = "reminder"
	// NotificationConfirmed is sent to the host when an attendee confirms
	NotificationConfirmed NotificationEvent = "confirmed"
	// NotificationSummaryReady is sent when a meeting summary arrives
	NotificationSummaryReady NotificationEvent = "summary_ready"
)

// NotifyResult tallies the outcome of one notification dispatch.
type NotifyResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
