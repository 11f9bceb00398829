// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package constants

// Meeting time constraints
const (
	// MaxMeetingDurationMinutes is the maximum duration of a meeting in minutes
	MaxMeetingDurationMinutes = 1440

	// ReminderLeadTimeMinutes is how far ahead of the start time reminder
	// emails go out
	ReminderLeadTimeMinutes = 60

	// ReminderWindowMinutes is the width of each reminder sweep window
	ReminderWindowMinutes = 30
)
