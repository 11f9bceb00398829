// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMeetingInvitationICS(t *testing.T) {
	generator := NewICSGenerator("CRM Suite", "meetings@example.com")

	params := ICSMeetingInvitationParams{
		MeetingUID:      "meeting-123",
		MeetingTopic:    "Quarterly Review",
		Agenda:          "Pipeline and forecast",
		StartTime:       time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Timezone:        "UTC",
		JoinLink:        "https://zoom.us/j/987654321",
		MeetingID:       "987654321",
		Passcode:        "112233",
		RecipientEmail:  "user@example.com",
	}

	ics, err := generator.GenerateMeetingInvitationICS(params)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
	assert.Contains(t, ics, "METHOD:REQUEST\r\n")
	assert.Contains(t, ics, "UID:meeting-123\r\n")
	assert.Contains(t, ics, "SUMMARY:Quarterly Review\r\n")
	assert.Contains(t, ics, "DTSTART;TZID=UTC:20260915T140000\r\n")
	assert.Contains(t, ics, "DTEND;TZID=UTC:20260915T150000\r\n")
	assert.Contains(t, ics, "ORGANIZER;CN=CRM Suite:mailto:meetings@example.com\r\n")
	assert.Contains(t, ics, "LOCATION:https://zoom.us/j/987654321\r\n")
	assert.Contains(t, ics, "ATTENDEE;CUTYPE=INDIVIDUAL;ROLE=REQ-PARTICIPANT;PARTSTAT=NEEDS-ACTION;RSVP=TRUE;CN=user@example.com:mailto:user@example.com\r\n")
	assert.Contains(t, ics, "BEGIN:VTIMEZONE\r\n")
	assert.Contains(t, ics, "TZID:UTC\r\n")
	assert.Contains(t, ics, "BEGIN:VALARM\r\n")
	assert.Contains(t, ics, "SEQUENCE:0\r\n")
}

func TestGenerateMeetingInvitationICS_InvalidTimezone(t *testing.T) {
	generator := NewICSGenerator("CRM Suite", "meetings@example.com")

	_, err := generator.GenerateMeetingInvitationICS(ICSMeetingInvitationParams{
		MeetingUID:   "meeting-123",
		MeetingTopic: "Quarterly Review",
		StartTime:    time.Now(),
		Timezone:     "Not/AZone",
	})
	assert.Error(t, err)
}

func TestGenerateMeetingInvitationICS_TimezoneConversion(t *testing.T) {
	generator := NewICSGenerator("CRM Suite", "meetings@example.com")

	// 14:00 UTC is 16:00 in Berlin during CEST
	ics, err := generator.GenerateMeetingInvitationICS(ICSMeetingInvitationParams{
		MeetingUID:      "meeting-123",
		MeetingTopic:    "Quarterly Review",
		StartTime:       time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Timezone:        "Europe/Berlin",
	})
	require.NoError(t, err)

	assert.Contains(t, ics, "DTSTART;TZID=Europe/Berlin:20260915T160000\r\n")
	assert.Contains(t, ics, "DTEND;TZID=Europe/Berlin:20260915T163000\r\n")
}

func TestEscapeICSText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Quarterly Review", "Quarterly Review"},
		{"comma", "Sales, Marketing", "Sales\\, Marketing"},
		{"semicolon", "a;b", "a\\;b"},
		{"newline", "line1\nline2", "line1\\nline2"},
		{"backslash", "a\\b", "a\\\\b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, escapeICSText(tc.input))
		})
	}
}

func TestFoldICSLine(t *testing.T) {
	short := "short line"
	assert.Equal(t, short, foldICSLine(short, ICALMaxLineLength))

	long := strings.Repeat("a", 200)
	folded := foldICSLine(long, ICALMaxLineLength)
	assert.Contains(t, folded, "\r\n ")

	// Unfolding must reconstruct the original text
	unfolded := strings.ReplaceAll(folded, "\r\n ", "")
	assert.Equal(t, long, unfolded)

	// No line may exceed the maximum length
	for _, line := range strings.Split(folded, "\r\n") {
		assert.LessOrEqual(t, len(line), ICALMaxLineLength)
	}
}

func TestBuildDescription(t *testing.T) {
	desc := buildDescription(descriptionParams{
		Agenda:    "Pipeline and forecast",
		MeetingID: "987654321",
		Passcode:  "112233",
		JoinLink:  "https://zoom.us/j/987654321",
	})

	assert.Contains(t, desc, "Pipeline and forecast")
	assert.Contains(t, desc, "Join Meeting: https://zoom.us/j/987654321")
	assert.Contains(t, desc, "Meeting ID: 987654321")
	assert.Contains(t, desc, "Passcode: 112233")
	assert.Contains(t, desc, "find your local number")
}
