// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// RenderedEmail holds both HTML and text versions of a rendered email
type RenderedEmail struct {
	HTML string
	Text string
}

// MeetingTemplateManager defines the interface for rendering meeting email templates
type MeetingTemplateManager interface {
	RenderInvitation(data domain.EmailInvitation) (*RenderedEmail, error)
	RenderReminder(data domain.EmailReminder) (*RenderedEmail, error)
	RenderHostConfirmation(data domain.EmailHostConfirmation) (*RenderedEmail, error)
	RenderSummaryReady(data domain.EmailSummaryReady) (*RenderedEmail, error)
}

// TemplateManager is the default implementation of MeetingTemplateManager
type TemplateManager struct {
	templates Templates
}

// NewTemplateManager creates a new template manager with all templates loaded
func NewTemplateManager() (*TemplateManager, error) {
	tm := &TemplateManager{}

	// Define all templates to load
	templateConfigs := map[string]templateConfig{
		"invitationHTML":       {"meeting_invitation.html", "templates/meeting_invitation.html"},
		"invitationText":       {"meeting_invitation.txt", "templates/meeting_invitation.txt"},
		"reminderHTML":         {"meeting_reminder.html", "templates/meeting_reminder.html"},
		"reminderText":         {"meeting_reminder.txt", "templates/meeting_reminder.txt"},
		"hostConfirmationHTML": {"host_confirmation.html", "templates/host_confirmation.html"},
		"hostConfirmationText": {"host_confirmation.txt", "templates/host_confirmation.txt"},
		"summaryReadyHTML":     {"meeting_summary_ready.html", "templates/meeting_summary_ready.html"},
		"summaryReadyText":     {"meeting_summary_ready.txt", "templates/meeting_summary_ready.txt"},
	}

	// Load all templates
	loadedTemplates := make(map[string]*template.Template)
	for key, cfg := range templateConfigs {
		tmpl, err := loadTemplate(cfg)
		if err != nil {
			return nil, err
		}
		loadedTemplates[key] = tmpl
	}

	// Organize templates into the structure
	tm.templates = Templates{
		Meeting: MeetingTemplates{
			Invitation: TemplateSet{
				HTML: loadedTemplates["invitationHTML"],
				Text: loadedTemplates["invitationText"],
			},
			Reminder: TemplateSet{
				HTML: loadedTemplates["reminderHTML"],
				Text: loadedTemplates["reminderText"],
			},
			HostConfirmation: TemplateSet{
				HTML: loadedTemplates["hostConfirmationHTML"],
				Text: loadedTemplates["hostConfirmationText"],
			},
			SummaryReady: TemplateSet{
				HTML: loadedTemplates["summaryReadyHTML"],
				Text: loadedTemplates["summaryReadyText"],
			},
		},
	}

	return tm, nil
}

// Ensure TemplateManager implements MeetingTemplateManager
var _ MeetingTemplateManager = (*TemplateManager)(nil)

// RenderInvitation renders an invitation email with both HTML and text versions
func (tm *TemplateManager) RenderInvitation(data domain.EmailInvitation) (*RenderedEmail, error) {
	html, err := renderTemplate(tm.templates.Meeting.Invitation.HTML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render invitation HTML: %w", err)
	}

	text, err := renderTemplate(tm.templates.Meeting.Invitation.Text, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render invitation text: %w", err)
	}

	return &RenderedEmail{HTML: html, Text: text}, nil
}

// RenderReminder renders a reminder email with both HTML and text versions
func (tm *TemplateManager) RenderReminder(data domain.EmailReminder) (*RenderedEmail, error) {
	html, err := renderTemplate(tm.templates.Meeting.Reminder.HTML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render reminder HTML: %w", err)
	}

	text, err := renderTemplate(tm.templates.Meeting.Reminder.Text, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render reminder text: %w", err)
	}

	return &RenderedEmail{HTML: html, Text: text}, nil
}

// RenderHostConfirmation renders a host confirmation email with both HTML and text versions
func (tm *TemplateManager) RenderHostConfirmation(data domain.EmailHostConfirmation) (*RenderedEmail, error) {
	html, err := renderTemplate(tm.templates.Meeting.HostConfirmation.HTML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render host confirmation HTML: %w", err)
	}

	text, err := renderTemplate(tm.templates.Meeting.HostConfirmation.Text, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render host confirmation text: %w", err)
	}

	return &RenderedEmail{HTML: html, Text: text}, nil
}

// RenderSummaryReady renders a summary notification email with both HTML and text versions
func (tm *TemplateManager) RenderSummaryReady(data domain.EmailSummaryReady) (*RenderedEmail, error) {
	html, err := renderTemplate(tm.templates.Meeting.SummaryReady.HTML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render summary ready HTML: %w", err)
	}

	text, err := renderTemplate(tm.templates.Meeting.SummaryReady.Text, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render summary ready text: %w", err)
	}

	return &RenderedEmail{HTML: html, Text: text}, nil
}

// TemplateSet holds HTML and text versions of a template
type TemplateSet struct {
	HTML *template.Template
	Text *template.Template
}

// MeetingTemplates holds all meeting-related templates
type MeetingTemplates struct {
	Invitation       TemplateSet
	Reminder         TemplateSet
	HostConfirmation TemplateSet
	SummaryReady     TemplateSet
}

// Templates holds all template categories
type Templates struct {
	Meeting MeetingTemplates
}

// templateConfig defines a template to be loaded
type templateConfig struct {
	name string
	path string
}

// loadTemplate loads a single template with the shared function map
func loadTemplate(config templateConfig) (*template.Template, error) {
	tmpl, err := template.New(config.name).Funcs(template.FuncMap{
		"formatTime":         formatTime,
		"formatDuration":     formatDuration,
		"capitalize":         capitalize,
		"newLineToBreakLine": newLineToBreakLine,
	}).ParseFS(templateFS, config.path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", config.name, err)
	}
	return tmpl, nil
}

// renderTemplate renders any template with the provided data
func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatTime formats a time for display in emails
func formatTime(t time.Time, timezone string) string {
	// Load the timezone
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		// Fall back to UTC if timezone is invalid
		loc = time.UTC
	}

	// Convert time to the specified timezone
	localTime := t.In(loc)

	// Format with ordinal day suffix
	day := localTime.Day()
	var suffix string
	switch {
	case day >= 11 && day <= 13:
		suffix = "th"
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	default:
		suffix = "th"
	}

	// Format: Wednesday, September 15th, 10:30 Africa/Johannesburg
	return fmt.Sprintf("%s, %s %d%s, %s %s",
		localTime.Format("Monday"),
		localTime.Format("January"),
		day,
		suffix,
		localTime.Format("15:04"),
		timezone)
}

// formatDuration formats duration in minutes to a human-readable string
func formatDuration(minutes int) string {
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}

	hours := minutes / 60
	remainingMinutes := minutes % 60

	if remainingMinutes == 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}

	hourLabel := "hours"
	if hours == 1 {
		hourLabel = "hour"
	}
	minuteLabel := "minutes"
	if remainingMinutes == 1 {
		minuteLabel = "minute"
	}
	return fmt.Sprintf("%d %s %d %s", hours, hourLabel, remainingMinutes, minuteLabel)
}

// capitalize capitalizes the first letter of a string
func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// newLineToBreakLine converts newlines to HTML break tags for proper email formatting
func newLineToBreakLine(s string) template.HTML {
	// Replace newlines with <br> tags
	escaped := template.HTMLEscapeString(s)
	replaced := strings.ReplaceAll(escaped, "\n", "<br>")
	// Return as template.HTML to prevent double escaping
	return template.HTML(replaced)
}
