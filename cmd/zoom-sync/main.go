// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

// Package main is the zoom-sync service: the REST API for managing CRM
// meetings and attendees on Zoom, the Zoom webhook receiver, and the
// background reconciliation and reminder jobs.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/crmsuite/zoom-sync-service/internal/handlers"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/messaging"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/zoom/webhook"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/internal/service"
)

const shutdownTimeout = 25 * time.Second

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Set up the JWT validator used by the authorization middleware.
	jwtAuth, err := setupJWTAuth()
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up JWT authentication")
		os.Exit(1)
	}

	// Initialize email service (independent of NATS)
	emailService, err := setupEmailService(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up email service")
		return
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{
		AppOrigin:    env.AppOrigin,
		EmailEnabled: env.EmailEnabled,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	gateway := setupZoomGateway(env, *repos)
	webhookValidator := webhook.NewZoomWebhookValidator(env.Zoom.WebhookSecret)

	notificationService := service.NewNotificationService(emailService, serviceConfig)
	meetingService := service.NewMeetingService(
		repos.Meeting,
		repos.Attendee,
		repos.Credential,
		gateway,
		messageBuilder,
		serviceConfig,
	)
	attendeeService := service.NewAttendeeService(
		repos.Meeting,
		repos.Attendee,
		messageBuilder,
		notificationService,
		serviceConfig,
	)
	credentialService := service.NewCredentialService(
		repos.Credential,
		gateway,
		serviceConfig,
	)
	syncService := service.NewSyncService(
		repos.Meeting,
		repos.Attendee,
		gateway,
		messageBuilder,
		credentialService,
		serviceConfig,
	)
	reminderService := service.NewReminderService(
		repos.Meeting,
		repos.Attendee,
		notificationService,
		serviceConfig,
	)
	webhookService := service.NewWebhookService(
		repos.Meeting,
		repos.Attendee,
		messageBuilder,
		notificationService,
		webhookValidator,
		serviceConfig,
	)

	// Initialize handlers
	api := apiHandlers{
		Meeting:    handlers.NewMeetingHandler(meetingService),
		Attendee:   handlers.NewAttendeeHandler(attendeeService),
		Credential: handlers.NewCredentialHandler(credentialService),
		Sync:       handlers.NewSyncHandler(syncService, reminderService),
		Dashboard:  handlers.NewDashboardHandler(meetingService, credentialService),
		Webhook:    handlers.NewZoomWebhookHandler(webhookService),
		Health: handlers.NewHealthHandler(
			meetingService,
			attendeeService,
			credentialService,
			syncService,
			reminderService,
			webhookService,
			notificationService,
		),
	}

	httpServer := setupHTTPServer(flags, api, jwtAuth, &gracefulCloseWG)

	// Start the periodic reconciliation and reminder jobs.
	startSchedulers(ctx, env, syncService, reminderService, &gracefulCloseWG)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}

// gracefulShutdown stops the HTTP server, the background jobs and the NATS
// connection, waiting up to the shutdown timeout for in-flight work.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")

	// Stop the background jobs first so no new sync or sweep starts while
	// the rest of the stack is going away.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	} else {
		gracefulCloseWG.Done()
	}

	// Draining flushes any pending event publishes; the closed handler
	// decrements the wait group.
	if err := natsConn.Drain(); err != nil {
		slog.With(logging.ErrKey, err).Error("error draining NATS connection")
	}

	waited := make(chan struct{})
	go func() {
		gracefulCloseWG.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		slog.Info("shutdown complete")
	case <-time.After(shutdownTimeout):
		slog.Error("shutdown timed out waiting for graceful close")
	}
}
