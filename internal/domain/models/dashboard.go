// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// DashboardStats are the aggregate counters shown on the CRM dashboard:
// meeting totals broken down by lifecycle state, plus the credential
// connection status and the most recent sync and verification times.
type DashboardStats struct {
	TotalMeetings     int              `json:"total_meetings"`
	ScheduledMeetings int              `json:"scheduled_meetings"`
	ActiveMeetings    int              `json:"active_meetings"`
	FinishedMeetings  int              `json:"finished_meetings"`
	CancelledMeetings int              `json:"cancelled_meetings"`
	ConnectionStatus  ConnectionStatus `json:"connection_status"`
	LastVerifiedAt    *time.Time       `json:"last_verified_at,omitempty"`
	LastSyncedAt      *time.Time       `json:"last_synced_at,omitempty"`
}
