// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// ConnectionStatus represents the lifecycle of a stored Zoom credential.
type ConnectionStatus string

const (
	// ConnectionStatusNotConfigured means the credential record exists but has no secrets yet
	ConnectionStatusNotConfigured ConnectionStatus = "not_configured"
	// ConnectionStatusConfigured means secrets are present but never verified
	ConnectionStatusConfigured ConnectionStatus = "configured"
	// ConnectionStatusConnected means the last connection test succeeded
	ConnectionStatusConnected ConnectionStatus = "connected"
	// ConnectionStatusError means the last connection test or token request failed
	ConnectionStatusError ConnectionStatus = "error"
)

// MeetingDefaults are the per-account defaults applied to meetings created
// on the remote platform when the request does not override them.
type MeetingDefaults struct {
	AutoRecord     bool `json:"auto_record"`
	WaitingRoom    bool `json:"waiting_room"`
	JoinBeforeHost bool `json:"join_before_host"`
	MuteOnEntry    bool `json:"mute_on_entry"`
}

// Credential is the key-value store representation of a Zoom
// Server-to-Server OAuth app configuration.
type Credential struct {
	UID              string           `json:"uid"`
	Name             string           `json:"name,omitempty"`
	ClientID         string           `json:"client_id"`
	ClientSecret     string           `json:"client_secret"`
	AccountID        string           `json:"account_id"`
	BaseURL          string           `json:"base_url,omitempty"`
	AuthURL          string           `json:"auth_url,omitempty"`
	WebhookSecret    string           `json:"webhook_secret,omitempty"`
	UseWebhooks      bool             `json:"use_webhooks"`
	Defaults         MeetingDefaults  `json:"defaults"`
	ConnectionStatus ConnectionStatus `json:"connection_status"`
	LastError        string           `json:"last_error,omitempty"`
	LastVerifiedAt   *time.Time       `json:"last_verified_at,omitempty"`
	CreatedAt        *time.Time       `json:"created_at,omitempty"`
	UpdatedAt        *time.Time       `json:"updated_at,omitempty"`
}

// IsConfigured reports whether all three OAuth fields are present.
func (c *Credential) IsConfigured() bool {
	return c != nil && c.ClientID != "" && c.ClientSecret != "" && c.AccountID != ""
}

// Redacted returns a copy safe for API responses and logs, with the
// client secret masked.
func (c *Credential) Redacted() *Credential {
	if c == nil {
		return nil
	}
	redacted := *c
	if redacted.ClientSecret != "" {
		redacted.ClientSecret = "********"
	}
	return &redacted
}

// Tags generates a set of log tags for the credential.
func (c *Credential) Tags() []string {
	tags := []string{}
	if c == nil {
		return tags
	}
	if c.UID != "" {
		tags = append(tags, "credential_uid:"+c.UID)
	}
	if c.AccountID != "" {
		tags = append(tags, "account_id:"+c.AccountID)
	}
	return tags
}
