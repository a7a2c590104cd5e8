package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues receipt jobs for sales
// stuck in receipt_status='pending' with a next_retry_at in the past. Covers
// both delivery failures and enqueues lost at sale time. The circuit breaker
// gates the tick so a downed SMTP relay is not hammered.

import (
	"context"
	"time"

	"makepri/internal/infra"
	"makepri/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Sales      repository.SaleRepository
	Dispatcher *Dispatcher
	CB         *infra.CircuitBreaker
}

// StartRetryCron launches a goroutine that ticks every 30s, queries due
// receipts, and pushes them back through the normal receipt queue. It
// respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — the workers would fail anyway.
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	sales, err := cfg.Sales.ListPendingReceipts(ctx, time.Now().UTC(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending receipts")
		return
	}
	if len(sales) == 0 {
		return
	}

	log.Info().Int("count", len(sales)).Msg("retry_cron: re-enqueueing pending receipts")
	for i := range sales {
		payload := ReceiptJobPayload{SaleID: sales[i].ID.String()}
		if err := cfg.Dispatcher.EnqueueReceipt(ctx, payload); err != nil {
			log.Warn().Err(err).Str("sale_id", payload.SaleID).Msg("retry_cron: enqueue failed")
		}
	}
}
