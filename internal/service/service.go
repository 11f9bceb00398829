// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

// Package service implements the business operations of the zoom sync
// service on top of the domain repositories, the meeting gateway, and
// the notification infrastructure.
package service

// Service is implemented by every service in this package.
type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration shared by the services.
type ServiceConfig struct {
	// AppOrigin is the public origin of the host CRM, used when building
	// links back into the app.
	AppOrigin string
	// EmailEnabled disables notification dispatch entirely when false.
	EmailEnabled bool
}
