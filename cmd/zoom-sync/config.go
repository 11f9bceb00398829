// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/pkg/utils"
)

// flags are the command line flags for the zoom-sync service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the zoom-sync service.
type environment struct {
	Port             string
	AppOrigin        string
	NatsURL          string
	EmailEnabled     bool
	SyncInterval     time.Duration
	ReminderInterval time.Duration
	Zoom             zoomConfig
	SMTP             smtpConfig
}

// zoomConfig holds the Zoom Server-to-Server OAuth app configuration used
// to bootstrap the gateway. The stored credential record can replace it at
// runtime through the credential endpoints.
type zoomConfig struct {
	ClientID      string
	ClientSecret  string
	AccountID     string
	BaseURL       string
	AuthURL       string
	WebhookSecret string
}

// smtpConfig holds the SMTP server configuration for notification emails.
type smtpConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// parseFlags parses command line flags for the zoom-sync service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the zoom-sync service
func parseEnv() environment {
	return environment{
		Port:             utils.CoalesceString(os.Getenv("PORT"), "8080"),
		AppOrigin:        os.Getenv("APP_ORIGIN"),
		NatsURL:          utils.CoalesceString(os.Getenv("NATS_URL"), nats.DefaultURL),
		EmailEnabled:     os.Getenv("EMAIL_ENABLED") != "false",
		SyncInterval:     parseDurationEnv("SYNC_INTERVAL", 5*time.Minute),
		ReminderInterval: parseDurationEnv("REMINDER_INTERVAL", time.Minute),
		Zoom: zoomConfig{
			ClientID:      os.Getenv("ZOOM_CLIENT_ID"),
			ClientSecret:  os.Getenv("ZOOM_CLIENT_SECRET"),
			AccountID:     os.Getenv("ZOOM_ACCOUNT_ID"),
			BaseURL:       os.Getenv("ZOOM_BASE_URL"),
			AuthURL:       os.Getenv("ZOOM_AUTH_URL"),
			WebhookSecret: os.Getenv("ZOOM_WEBHOOK_SECRET_TOKEN"),
		},
		SMTP: smtpConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     parseIntEnv("SMTP_PORT", 587),
			From:     os.Getenv("SMTP_FROM"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
	}
}

func parseDurationEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	duration, err := time.ParseDuration(raw)
	if err != nil || duration <= 0 {
		slog.With(logging.ErrKey, err, "name", name, "value", raw).Error("invalid duration environment variable, using default")
		return fallback
	}
	return duration
}

func parseIntEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.With(logging.ErrKey, err, "name", name, "value", raw).Error("invalid integer environment variable, using default")
		return fallback
	}
	return value
}
