// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/internal/service"
)

// startSchedulers runs the periodic background jobs: the Zoom
// reconciliation pass and the reminder sweep. Both stop when ctx is
// cancelled during shutdown.
func startSchedulers(
	ctx context.Context,
	env environment,
	syncService *service.SyncService,
	reminderService *service.ReminderService,
	gracefulCloseWG *sync.WaitGroup,
) {
	gracefulCloseWG.Add(1)
	go func() {
		defer gracefulCloseWG.Done()
		runOnTicker(ctx, "sync", env.SyncInterval, func(ctx context.Context) error {
			_, err := syncService.PullSync(ctx)
			return err
		})
	}()

	gracefulCloseWG.Add(1)
	go func() {
		defer gracefulCloseWG.Done()
		runOnTicker(ctx, "reminders", env.ReminderInterval, func(ctx context.Context) error {
			_, err := reminderService.RunSweep(ctx)
			return err
		})
	}()
}

// runOnTicker invokes job every interval until ctx is cancelled. An
// in-flight run from a previous tick surfaces as a conflict; that is
// expected when a manual trigger overlaps a tick, so it only logs at
// debug level.
func runOnTicker(ctx context.Context, name string, interval time.Duration, job func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.With("job", name, "interval", interval.String()).Info("starting background job")

	for {
		select {
		case <-ctx.Done():
			slog.With("job", name).Info("stopping background job")
			return
		case <-ticker.C:
			if err := job(ctx); err != nil {
				if domain.GetErrorType(err) == domain.ErrorTypeConflict {
					slog.DebugContext(ctx, "background job run skipped, previous run still in flight", "job", name)
					continue
				}
				slog.ErrorContext(ctx, "background job run failed", "job", name, logging.ErrKey, err)
			}
		}
	}
}
