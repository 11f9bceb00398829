// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crmsuite/zoom-sync-service/internal/handlers"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/auth"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/internal/middleware"
)

// apiHandlers bundles the HTTP handlers mounted on the server.
type apiHandlers struct {
	Meeting    *handlers.MeetingHandler
	Attendee   *handlers.AttendeeHandler
	Credential *handlers.CredentialHandler
	Sync       *handlers.SyncHandler
	Dashboard  *handlers.DashboardHandler
	Webhook    *handlers.ZoomWebhookHandler
	Health     *handlers.HealthHandler
}

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(flags flags, api apiHandlers, jwtAuth *auth.JWTAuth, gracefulCloseWG *sync.WaitGroup) *http.Server {
	mux := http.NewServeMux()
	api.Meeting.Register(mux)
	api.Attendee.Register(mux)
	api.Credential.Register(mux)
	api.Sync.Register(mux)
	api.Dashboard.Register(mux)
	api.Webhook.Register(mux)
	api.Health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux

	// Add HTTP middleware
	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it should be the last middleware added to the handler since it is executed in reverse order.
	handler = middleware.WebhookBodyCaptureMiddleware()(handler)
	handler = middleware.AuthorizationMiddleware(jwtAuth)(handler)
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)

	// Set up http listener in a goroutine using provided command line parameters.
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
