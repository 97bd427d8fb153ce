// Package worker hosts the background loops: the settler sweep that
// guarantees no transaction stays pending forever, and the webhook
// dispatcher that drains queued deliveries.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/caotrungduc03/banking-app/internal/adapter/storage"
	"github.com/caotrungduc03/banking-app/internal/core/domain"
	"github.com/caotrungduc03/banking-app/internal/core/notifications"
)

const (
	sweepInterval = 30 * time.Second
	// A transaction pending longer than this lost its engine (crash or
	// timeout mid-settlement); the sweep drives it to failed so it is
	// visible in history instead of stuck.
	maxPendingAge = 2 * time.Minute

	dispatchInterval = 5 * time.Second
	maxAttempts      = 5
)

// StartSettlementSweep resolves transactions left pending past the cutoff.
func StartSettlementSweep(store storage.Store) {
	go func() {
		slog.Info("settlement sweep started", "interval", sweepInterval, "max_pending_age", maxPendingAge)
		for {
			sweep(store)
			time.Sleep(sweepInterval)
		}
	}()
}

func sweep(store storage.Store) {
	ctx := context.Background()
	stale, err := store.PendingOlderThan(ctx, time.Now().UTC().Add(-maxPendingAge))
	if err != nil {
		slog.Error("sweep: failed to list pending transactions", "error", err)
		return
	}
	for _, txn := range stale {
		if err := store.SettleTransaction(ctx, txn.ID, domain.StatusFailed); err != nil {
			slog.Error("sweep: failed to settle stale transaction", "error", err, "transaction_id", txn.ID)
			continue
		}
		slog.Warn("sweep: stale pending transaction marked failed",
			"transaction_id", txn.ID,
			"amount", txn.Amount,
			"sender_id", txn.SenderID,
			"receiver_id", txn.ReceiverID,
		)
	}
}

// StartWebhookWorker delivers queued webhook jobs with retry and backoff.
func StartWebhookWorker(store storage.Store, secret string) {
	go func() {
		slog.Info("webhook worker started")
		for {
			dispatch(store, secret)
			time.Sleep(dispatchInterval)
		}
	}()
}

func dispatch(store storage.Store, secret string) {
	ctx := context.Background()

	job, err := store.NextWebhookJob(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNoJob) {
			slog.Error("worker: failed to fetch webhook job", "error", err)
		}
		return
	}

	slog.Info("worker: delivering webhook", "job_id", job.ID, "url", job.URL, "attempts", job.Attempts)

	if sendErr := notifications.SendWebhook(job.URL, job.Payload, secret); sendErr != nil {
		slog.Error("worker: webhook delivery failed", "error", sendErr, "attempts", job.Attempts)
		if job.Attempts+1 >= maxAttempts {
			if err := store.FailWebhookJob(ctx, job.ID); err != nil {
				slog.Error("worker: failed to mark job failed", "error", err, "job_id", job.ID)
			}
			return
		}
		nextRun := time.Now().UTC().Add(time.Duration(job.Attempts*10+10) * time.Second)
		if err := store.RetryWebhookJob(ctx, job.ID, nextRun); err != nil {
			slog.Error("worker: failed to schedule retry", "error", err, "job_id", job.ID)
		}
		return
	}

	if err := store.CompleteWebhookJob(ctx, job.ID); err != nil {
		slog.Error("worker: failed to mark job completed", "error", err, "job_id", job.ID)
		return
	}
	slog.Info("worker: webhook delivered", "job_id", job.ID)
}
