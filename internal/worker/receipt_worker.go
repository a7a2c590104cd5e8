package worker

// receipt_worker.go
// Processes sale receipt jobs from QueueReceipt: renders the thermal PDF and
// mails it to the customer through the circuit-breaker-guarded SMTP relay.
// Failures are rescheduled with exponential backoff; exhausted jobs go to the
// DLQ and the sale is marked receipt_status='error'.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"makepri/internal/infra"
	"makepri/internal/model"
	"makepri/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxReceiptRetries bounds delivery attempts before a receipt is parked in
// the DLQ.
const MaxReceiptRetries = 5

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	SaleID string `json:"sale_id"`
}

type ReceiptWorker struct {
	sales          repository.SaleRepository
	mailer         *infra.Mailer
	cb             *infra.CircuitBreaker
	rdb            *redis.Client
	storeName      string
	pdfStoragePath string
}

func NewReceiptWorker(
	sales repository.SaleRepository,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	rdb *redis.Client,
	storeName string,
	pdfStoragePath string,
) *ReceiptWorker {
	return &ReceiptWorker{
		sales:          sales,
		mailer:         mailer,
		cb:             cb,
		rdb:            rdb,
		storeName:      storeName,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single receipt job:
//  1. fetch the sale, skip unless receipt_status is still pending
//  2. render the PDF receipt
//  3. send through the circuit breaker
//  4. mark sent, or schedule the next retry / park in the DLQ
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}
	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale_id")
		return
	}

	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("receipt_worker: sale not found")
		return
	}
	if sale.ReceiptStatus != model.ReceiptPending {
		log.Debug().Str("sale_id", payload.SaleID).Str("status", sale.ReceiptStatus).
			Msg("receipt_worker: nothing to do")
		return
	}
	if sale.ReceiptEmail == nil || *sale.ReceiptEmail == "" {
		sale.ReceiptStatus = model.ReceiptSkipped
		sale.NextRetryAt = nil
		_ = w.sales.Update(ctx, sale)
		return
	}

	pdfPath, err := infra.GenerateReceiptPDF(sale, w.storeName, w.pdfStoragePath)
	if err != nil {
		w.fail(ctx, sale, fmt.Errorf("pdf generation: %w", err), raw)
		return
	}

	subject := fmt.Sprintf("%s — receipt #%d", w.storeName, sale.TicketNumber)
	body := fmt.Sprintf("Your purchase receipt is attached.\nTotal: R$ %s", sale.Total.StringFixed(2))

	sendErr := w.cb.Execute(func() error {
		return w.mailer.SendWithAttachment(*sale.ReceiptEmail, subject, body, pdfPath)
	})
	if sendErr != nil {
		w.fail(ctx, sale, sendErr, raw)
		return
	}

	sale.ReceiptStatus = model.ReceiptSent
	sale.NextRetryAt = nil
	sale.LastError = nil
	if err := w.sales.Update(ctx, sale); err != nil {
		log.Error().Err(err).Str("sale_id", sale.ID.String()).Msg("receipt_worker: status update failed")
		return
	}
	log.Info().Str("sale_id", sale.ID.String()).Str("to", *sale.ReceiptEmail).
		Msg("receipt_worker: receipt delivered")
}

func (w *ReceiptWorker) fail(ctx context.Context, sale *model.Sale, cause error, raw json.RawMessage) {
	sale.ReceiptRetries++
	msg := cause.Error()
	sale.LastError = &msg

	if sale.ReceiptRetries >= MaxReceiptRetries {
		sale.ReceiptStatus = model.ReceiptError
		sale.NextRetryAt = nil
		SendToDLQ(ctx, w.rdb, QueueReceipt, "receipt", raw,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxReceiptRetries, msg),
			sale.ReceiptRetries)
		log.Error().Str("sale_id", sale.ID.String()).Int("retries", sale.ReceiptRetries).
			Msg("receipt_worker: max retries exceeded, moved to DLQ")
	} else {
		next := time.Now().UTC().Add(retryBackoff(sale.ReceiptRetries))
		sale.NextRetryAt = &next
		log.Warn().Err(cause).Str("sale_id", sale.ID.String()).
			Int("retries", sale.ReceiptRetries).Time("next_retry_at", next).
			Msg("receipt_worker: delivery failed, rescheduled")
	}

	if err := w.sales.Update(ctx, sale); err != nil {
		log.Error().Err(err).Str("sale_id", sale.ID.String()).Msg("receipt_worker: retry bookkeeping failed")
	}
}

// retryBackoff returns the wait before the given attempt: 1m, 2m, 4m, 8m …
func retryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(1<<uint(attempt-1)) * time.Minute
}
