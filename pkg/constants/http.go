// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package constants

import "fmt"

// Constants for the HTTP request headers
const (
	// AuthorizationHeader is the header name for the authorization
	AuthorizationHeader string = "authorization"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// EtagHeader is the header name for the ETag
	EtagHeader string = "ETag"

	// ZoomSignatureHeader carries the HMAC signature Zoom computes over
	// each webhook delivery
	ZoomSignatureHeader string = "x-zm-signature"

	// ZoomTimestampHeader carries the timestamp Zoom signed the webhook
	// delivery with
	ZoomTimestampHeader string = "x-zm-request-timestamp"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// contextAuthorization is the type for the authorization context key
type contextAuthorization string

// AuthorizationContextID is the context ID for the authorization
const AuthorizationContextID contextAuthorization = "authorization"

// contextPrincipal is the type for the authenticated principal context key
type contextPrincipal string

// PrincipalContextID is the context ID for the authenticated principal
const PrincipalContextID contextPrincipal = "principal"

// JoinURL generates the join URL shown to invitees for a meeting UID.
func JoinURL(appOrigin, meetingUID string) string {
	return fmt.Sprintf("%s/meetings/%s", appOrigin, meetingUID)
}
