// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/auth"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/email"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/store"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/zoom"
	"github.com/crmsuite/zoom-sync-service/internal/infrastructure/zoom/api"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/internal/service"
)

const natsDrainTimeout = 25 * time.Second

// setupJWTAuth configures JWT authentication for the service
func setupJWTAuth() (*auth.JWTAuth, error) {
	jwtAuthConfig := auth.JWTAuthConfig{
		Secret:             os.Getenv("API_AUTH_SECRET"),
		Audience:           os.Getenv("JWT_AUDIENCE"),
		MockLocalPrincipal: os.Getenv("JWT_AUTH_DISABLED_MOCK_LOCAL_PRINCIPAL"),
	}
	return auth.NewJWTAuth(jwtAuthConfig)
}

// setupNATS connects to the NATS server. The connection participates in
// graceful shutdown: draining it on exit flushes pending event publishes.
func setupNATS(env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(natsDrainTimeout),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.With("nats_url", env.NatsURL).Info("NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
				return
			}
			slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
		}),
		nats.ClosedHandler(func(natsConn *nats.Conn) {
			slog.With(logging.ErrKey, natsConn.LastError()).Info("NATS connection closed")
			gracefulCloseWG.Done()
			done <- os.Interrupt
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, err
	}
	return natsConn, nil
}

// repositories bundles the NATS KV backed stores.
type repositories struct {
	Meeting    *store.NatsMeetingRepository
	Attendee   *store.NatsAttendeeRepository
	Credential *store.NatsCredentialRepository
}

// getKeyValueStores binds the JetStream KV buckets for the service,
// creating any bucket that does not exist yet.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	meetingsKV, err := openKeyValueBucket(ctx, js, store.KVStoreNameMeetings)
	if err != nil {
		return nil, err
	}
	attendeesKV, err := openKeyValueBucket(ctx, js, store.KVStoreNameMeetingAttendees)
	if err != nil {
		return nil, err
	}
	credentialsKV, err := openKeyValueBucket(ctx, js, store.KVStoreNameZoomCredentials)
	if err != nil {
		return nil, err
	}

	return &repositories{
		Meeting:    store.NewNatsMeetingRepository(meetingsKV),
		Attendee:   store.NewNatsAttendeeRepository(attendeesKV),
		Credential: store.NewNatsCredentialRepository(credentialsKV),
	}, nil
}

func openKeyValueBucket(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}
	slog.With("bucket", bucket).Info("KV bucket not found, creating it")
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
}

// setupEmailService picks the email backend: SMTP when notifications are
// enabled and a host is configured, otherwise the no-op logger.
func setupEmailService(env environment) (domain.EmailService, error) {
	if !env.EmailEnabled || env.SMTP.Host == "" {
		slog.Info("email notifications disabled, using no-op email service")
		return email.NewNoOpService(), nil
	}
	return email.NewSMTPService(email.SMTPConfig{
		Host:     env.SMTP.Host,
		Port:     env.SMTP.Port,
		From:     env.SMTP.From,
		Username: env.SMTP.Username,
		Password: env.SMTP.Password,
	})
}

// setupZoomGateway builds the Zoom gateway. API calls resolve the stored
// credential at call time, with the boot environment as the fallback until
// one is saved.
func setupZoomGateway(env environment, repos repositories) *zoom.Gateway {
	fallback := api.Config{
		AccountID:    env.Zoom.AccountID,
		ClientID:     env.Zoom.ClientID,
		ClientSecret: env.Zoom.ClientSecret,
		BaseURL:      env.Zoom.BaseURL,
		AuthURL:      env.Zoom.AuthURL,
	}
	source := zoom.NewCredentialClientSource(repos.Credential, service.CredentialUID, fallback)
	return zoom.NewGatewayWithSource(source)
}
