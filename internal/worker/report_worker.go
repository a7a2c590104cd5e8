package worker

// report_worker.go
// Renders the closing report PDF of a cash session and mails it to the back
// office. One-shot per close; the PDF stays on disk either way.

import (
	"context"
	"encoding/json"
	"fmt"

	"makepri/internal/infra"
	"makepri/internal/model"
	"makepri/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CashReportJobPayload is the job envelope sent to QueueCashReport.
type CashReportJobPayload struct {
	SessionID string `json:"session_id"`
}

type ReportWorker struct {
	cash           repository.CashRepository
	users          repository.UserRepository
	mailer         *infra.Mailer
	cb             *infra.CircuitBreaker
	storeName      string
	pdfStoragePath string
	reportEmail    string
}

func NewReportWorker(
	cash repository.CashRepository,
	users repository.UserRepository,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	storeName string,
	pdfStoragePath string,
	reportEmail string,
) *ReportWorker {
	return &ReportWorker{
		cash:           cash,
		users:          users,
		mailer:         mailer,
		cb:             cb,
		storeName:      storeName,
		pdfStoragePath: pdfStoragePath,
		reportEmail:    reportEmail,
	}
}

func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload CashReportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return
	}
	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		log.Error().Str("session_id", payload.SessionID).Msg("report_worker: invalid session_id")
		return
	}

	session, err := w.cash.FindSessionByID(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", payload.SessionID).Msg("report_worker: session not found")
		return
	}

	data := infra.CashReportData{
		Session:      session,
		OpenedByName: w.userName(ctx, &session.OpenedBy),
		ClosedByName: w.userName(ctx, session.ClosedBy),
		Movements:    session.Movements,
	}

	sums, err := w.cash.SumMovements(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", payload.SessionID).Msg("report_worker: ledger aggregation failed")
		return
	}
	for _, row := range sums {
		switch row.Type {
		case model.MovementSale:
			switch row.PaymentMethod {
			case model.PaymentCash:
				data.CashSales = data.CashSales.Add(row.Total)
			case model.PaymentCredit, model.PaymentDebit:
				data.CardSales = data.CardSales.Add(row.Total)
			case model.PaymentPix:
				data.PixSales = data.PixSales.Add(row.Total)
			}
		case model.MovementWithdrawal:
			if row.PaymentMethod == model.PaymentCash {
				data.Withdrawals = data.Withdrawals.Add(row.Total)
			}
		case model.MovementSupply:
			if row.PaymentMethod == model.PaymentCash {
				data.Supplies = data.Supplies.Add(row.Total)
			}
		}
	}
	data.ExpectedBalance = session.OpeningFloat.
		Add(data.CashSales).
		Add(data.Supplies).
		Sub(data.Withdrawals)
	if session.ExpectedBalance != nil {
		// Prefer what was frozen at close time.
		data.ExpectedBalance = *session.ExpectedBalance
	}

	pdfPath, err := infra.GenerateCashReportPDF(data, w.storeName, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("session_id", payload.SessionID).Msg("report_worker: PDF generation failed")
		return
	}
	log.Info().Str("session_id", payload.SessionID).Str("pdf", pdfPath).Msg("report_worker: report generated")

	if w.reportEmail == "" {
		return
	}

	discrepancy := decimal.Zero
	if session.Discrepancy != nil {
		discrepancy = *session.Discrepancy
	}
	subject := fmt.Sprintf("%s — cash session closed, drawer %d", w.storeName, session.Drawer)
	body := fmt.Sprintf("Session %s was closed.\nExpected: R$ %s\nDiscrepancy: R$ %s\nThe full report is attached.",
		session.ID, data.ExpectedBalance.StringFixed(2), discrepancy.StringFixed(2))

	sendErr := w.cb.Execute(func() error {
		return w.mailer.SendWithAttachment(w.reportEmail, subject, body, pdfPath)
	})
	if sendErr != nil {
		log.Warn().Err(sendErr).Str("session_id", payload.SessionID).
			Msg("report_worker: report mail failed, PDF kept on disk")
		return
	}
	log.Info().Str("session_id", payload.SessionID).Str("to", w.reportEmail).
		Msg("report_worker: report delivered")
}

func (w *ReportWorker) userName(ctx context.Context, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	u, err := w.users.FindByID(ctx, *id)
	if err != nil {
		return id.String()
	}
	return u.Name
}
