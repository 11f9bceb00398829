// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/crmsuite/zoom-sync-service/internal/logging"
)

// User type constants for Zoom API
const (
	UserTypeBasic    = 1
	UserTypeLicensed = 2
	UserTypeOnPrem   = 3
)

// ZoomUser represents a user in the Zoom account
type ZoomUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Type        int    `json:"type"`
	Status      string `json:"status"`
	AccountID   string `json:"account_id"`
	Timezone    string `json:"timezone"`
	DisplayName string `json:"display_name"`
}

// GetCurrentUser retrieves the account owner's user record. Used to
// verify that the stored credential actually works.
func (c *Client) GetCurrentUser(ctx context.Context) (*ZoomUser, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_current_user"))

	resp, err := c.doRequest(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get Zoom user", logging.ErrKey, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := parseErrorResponse(resp.StatusCode, body)
		slog.ErrorContext(ctx, "Zoom API returned error", logging.ErrKey, err, "status", resp.StatusCode)
		return nil, err
	}

	var user ZoomUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		slog.ErrorContext(ctx, "failed to decode user response", logging.ErrKey, err)
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}

	slog.DebugContext(ctx, "retrieved Zoom user", "user_id", user.ID, "email", user.Email)

	return &user, nil
}
