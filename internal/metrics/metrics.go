// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRunsTotal counts reconciliation runs by outcome.
	// Labels: status (success/error)
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoomsync_sync_runs_total",
			Help: "Total number of reconciliation runs by outcome",
		},
		[]string{"status"},
	)

	// SyncMeetingsTotal counts per-meeting reconciliation outcomes.
	// Labels: outcome (created/updated/unchanged/enriched/conflict/failed)
	SyncMeetingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoomsync_sync_meetings_total",
			Help: "Total number of meetings handled by reconciliation, by outcome",
		},
		[]string{"outcome"},
	)

	// SyncDuration is the wall-clock duration of reconciliation runs.
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zoomsync_sync_duration_seconds",
			Help:    "Reconciliation run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	// ZoomAPICallsTotal counts outbound Zoom API calls.
	// Labels: operation (create_meeting/update_meeting/...), status (success/error)
	ZoomAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoomsync_zoom_api_calls_total",
			Help: "Total number of Zoom API calls by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	// EmailsTotal counts notification emails by event and outcome.
	// Labels: event (invited/reminder/confirmed/summary_ready), status (sent/failed)
	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoomsync_emails_total",
			Help: "Total number of notification emails by event and outcome",
		},
		[]string{"event", "status"},
	)

	// WebhookEventsTotal counts received Zoom webhook events.
	// Labels: event, status (handled/ignored/invalid)
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoomsync_webhook_events_total",
			Help: "Total number of Zoom webhook events by type and outcome",
		},
		[]string{"event", "status"},
	)

	// ZoomConnectionUp reports the credential connection state
	// (1=connected, 0=anything else).
	ZoomConnectionUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zoomsync_zoom_connection_up",
			Help: "Whether the stored Zoom credential passed its last connection test",
		},
	)
)

// RecordSyncRun records one reconciliation run.
func RecordSyncRun(success bool, durationSeconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	SyncRunsTotal.WithLabelValues(status).Inc()
	SyncDuration.Observe(durationSeconds)
}

// RecordSyncOutcome adds n meetings to the given reconciliation outcome.
func RecordSyncOutcome(outcome string, n int) {
	if n <= 0 {
		return
	}
	SyncMeetingsTotal.WithLabelValues(outcome).Add(float64(n))
}

// RecordZoomAPICall records one outbound Zoom API call.
func RecordZoomAPICall(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	ZoomAPICallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordEmail records one notification email attempt.
func RecordEmail(event string, sent bool) {
	status := "sent"
	if !sent {
		status = "failed"
	}
	EmailsTotal.WithLabelValues(event, status).Inc()
}

// RecordWebhookEvent records one received webhook event.
func RecordWebhookEvent(event, status string) {
	WebhookEventsTotal.WithLabelValues(event, status).Inc()
}

// SetZoomConnectionUp sets the credential connection gauge.
func SetZoomConnectionUp(up bool) {
	if up {
		ZoomConnectionUp.Set(1)
	} else {
		ZoomConnectionUp.Set(0)
	}
}
