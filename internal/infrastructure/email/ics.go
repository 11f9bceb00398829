// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"fmt"
	"strings"
	"time"
)

// ICS constants for consistent values across all generated ICS files
const (
	ICSProdID         = "-//CRM Suite//Zoom Sync Service//EN"
	ICALVersion       = "2.0"
	ICALScale         = "GREGORIAN"
	ICALMaxLineLength = 75 // this is arbitrarily set to 75 characters to avoid long lines
)

// UTF-8 byte masks for line folding safety
const (
	UTF8TwoBitMask         = 0xC0 // Mask to isolate first two bits (11000000)
	UTF8ContinuationPrefix = 0x80 // UTF-8 continuation byte prefix (10000000)
)

// MeetingICSGenerator is the interface for generating ICS calendar files
type MeetingICSGenerator interface {
	GenerateMeetingInvitationICS(params ICSMeetingInvitationParams) (string, error)
}

// ICSGenerator generates ICS (iCalendar) files for meeting invitations.
// The organizer appears in the ORGANIZER property of every generated event.
type ICSGenerator struct {
	OrganizerName  string
	OrganizerEmail string
}

// NewICSGenerator creates a new ICS generator
func NewICSGenerator(organizerName, organizerEmail string) *ICSGenerator {
	return &ICSGenerator{
		OrganizerName:  organizerName,
		OrganizerEmail: organizerEmail,
	}
}

// Ensure [ICSGenerator] implements [MeetingICSGenerator]
var _ MeetingICSGenerator = (*ICSGenerator)(nil)

// ICSMeetingInvitationParams contains all the information needed to generate an ICS file
// for a meeting invitation
type ICSMeetingInvitationParams struct {
	MeetingUID      string // Unique meeting identifier for consistent ICS UID
	MeetingTopic    string
	Agenda          string
	StartTime       time.Time
	DurationMinutes int
	Timezone        string
	JoinLink        string
	MeetingID       string
	Passcode        string
	RecipientEmail  string
	Sequence        int // ICS sequence number for calendar updates
}

// GenerateMeetingInvitationICS generates an ICS file content for a meeting invitation
func (g *ICSGenerator) GenerateMeetingInvitationICS(params ICSMeetingInvitationParams) (string, error) {
	// Load timezone
	loc, err := time.LoadLocation(params.Timezone)
	if err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", params.Timezone, err)
	}

	// Generate consistent UID using meeting UID
	uid := params.MeetingUID
	dtstamp := time.Now().UTC().Format("20060102T150405Z")

	// Convert times to the meeting timezone
	startLocal := params.StartTime.In(loc)
	endLocal := startLocal.Add(time.Duration(params.DurationMinutes) * time.Minute)

	// Format times in YYYYMMDDTHHMMSS format
	dtstart := startLocal.Format("20060102T150405")
	dtend := endLocal.Format("20060102T150405")

	// Build the ICS content
	var ics strings.Builder

	// Calendar header
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString(fmt.Sprintf("VERSION:%s\r\n", ICALVersion))
	ics.WriteString(fmt.Sprintf("PRODID:%s\r\n", ICSProdID))
	ics.WriteString(fmt.Sprintf("CALSCALE:%s\r\n", ICALScale))
	ics.WriteString("METHOD:REQUEST\r\n")

	// Timezone definition
	ics.WriteString(generateTimezoneDefinition(params.Timezone))

	// Event
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s\r\n", uid))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", dtstamp))
	if g.OrganizerEmail != "" {
		ics.WriteString(fmt.Sprintf("ORGANIZER;CN=%s:mailto:%s\r\n", g.OrganizerName, g.OrganizerEmail))
	}
	ics.WriteString(fmt.Sprintf("DTSTART;TZID=%s:%s\r\n", params.Timezone, dtstart))
	ics.WriteString(fmt.Sprintf("DTEND;TZID=%s:%s\r\n", params.Timezone, dtend))

	// Meeting details
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICSText(params.MeetingTopic)))

	// Build enhanced description with meeting details
	descriptionText := buildDescription(descriptionParams{
		Agenda:    params.Agenda,
		MeetingID: params.MeetingID,
		Passcode:  params.Passcode,
		JoinLink:  params.JoinLink,
	})
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICSText(descriptionText)))

	// Location (Zoom URL) - only add if join link exists
	if params.JoinLink != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", params.JoinLink))
		// URL property for the join link
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", params.JoinLink))
	}

	// Attendee
	if params.RecipientEmail != "" {
		ics.WriteString(fmt.Sprintf("ATTENDEE;CUTYPE=INDIVIDUAL;ROLE=REQ-PARTICIPANT;PARTSTAT=NEEDS-ACTION;RSVP=TRUE;CN=%s:mailto:%s\r\n",
			params.RecipientEmail, params.RecipientEmail))
	}

	// Meeting properties
	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("CLASS:PUBLIC\r\n")
	ics.WriteString("PRIORITY:5\r\n")
	ics.WriteString(fmt.Sprintf("SEQUENCE:%d\r\n", params.Sequence))

	// Alarm
	ics.WriteString("BEGIN:VALARM\r\n")
	ics.WriteString("TRIGGER:-PT10M\r\n")
	ics.WriteString("ACTION:DISPLAY\r\n")
	ics.WriteString(fmt.Sprintf("DESCRIPTION:Reminder: %s\r\n", escapeICSText(params.MeetingTopic)))
	ics.WriteString("END:VALARM\r\n")

	ics.WriteString("END:VEVENT\r\n")
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String(), nil
}

// generateTimezoneDefinition generates the VTIMEZONE component
func generateTimezoneDefinition(tzid string) string {
	var tz strings.Builder
	tz.WriteString("BEGIN:VTIMEZONE\r\n")
	tz.WriteString(fmt.Sprintf("TZID:%s\r\n", tzid))
	tz.WriteString(fmt.Sprintf("X-LIC-LOCATION:%s\r\n", tzid))
	tz.WriteString("END:VTIMEZONE\r\n")
	return tz.String()
}

type descriptionParams struct {
	Agenda    string
	MeetingID string
	Passcode  string
	JoinLink  string
}

// buildDescription builds the enhanced description with meeting details
func buildDescription(params descriptionParams) string {
	var desc strings.Builder

	if params.Agenda != "" {
		desc.WriteString(params.Agenda)
		desc.WriteString("\n\n")
	}

	if params.JoinLink != "" {
		desc.WriteString("Join Meeting: ")
		desc.WriteString(params.JoinLink)
		desc.WriteString("\n\n")
	}

	if params.MeetingID != "" {
		desc.WriteString("Meeting ID: ")
		desc.WriteString(params.MeetingID)
		desc.WriteString("\n")
	}

	if params.Passcode != "" {
		desc.WriteString("Passcode: ")
		desc.WriteString(params.Passcode)
		desc.WriteString("\n")
	}

	if params.MeetingID != "" {
		desc.WriteString("\n")
		desc.WriteString("To dial in, find your local number: https://zoom.us/zoomconference\n")
		desc.WriteString("After dialing, enter Meeting ID: ")
		desc.WriteString(params.MeetingID)
		desc.WriteString("#\n")
		if params.Passcode != "" {
			desc.WriteString("Then enter Passcode: ")
			desc.WriteString(params.Passcode)
			desc.WriteString("#\n")
		}
	}

	return desc.String()
}

// escapeICSText escapes special characters in ICS text fields
func escapeICSText(text string) string {
	// Escape special characters according to RFC5545
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "\n", "\\n")
	text = strings.ReplaceAll(text, ",", "\\,")
	text = strings.ReplaceAll(text, ";", "\\;")

	// Fold long lines (75 characters max per line, continued lines start with space)
	return foldICSLine(text, ICALMaxLineLength)
}

// foldICSLine folds long lines according to RFC5545 (75 octets max)
func foldICSLine(line string, maxLength int) string {
	if len(line) <= maxLength {
		return line
	}

	var folded strings.Builder
	remaining := line
	first := true

	for len(remaining) > 0 {
		cutLength := maxLength
		if !first {
			cutLength = maxLength - 1 // Account for leading space on continued lines
		}

		if len(remaining) <= cutLength {
			if !first {
				folded.WriteString("\r\n ")
			}
			folded.WriteString(remaining)
			break
		}

		// Find a safe place to break (not in the middle of a UTF-8 sequence)
		breakPoint := cutLength
		for breakPoint > 0 && remaining[breakPoint-1]&UTF8TwoBitMask == UTF8ContinuationPrefix {
			breakPoint--
		}

		if !first {
			folded.WriteString("\r\n ")
		}
		folded.WriteString(remaining[:breakPoint])
		remaining = remaining[breakPoint:]
		first = false
	}

	return folded.String()
}
