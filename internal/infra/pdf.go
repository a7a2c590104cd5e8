package infra

// pdf.go — PDF generation using go-pdf/fpdf.
// Two documents are produced here:
//   - thermal receipt-style sale tickets (74×105mm, close to receipt paper)
//   - A4 cash session closing reports with the reconciliation breakdown
// Output files are written under the configured storage path.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"makepri/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateReceiptPDF renders a completed Sale as a small receipt ticket.
// Returns the absolute path to the generated file.
func GenerateReceiptPDF(sale *model.Sale, storeName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%d.pdf", sale.TicketNumber)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, storeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sale receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Ticket #%d", sale.TicketNumber), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if sale.CustomerName != nil {
		pdf.CellFormat(contentW, 4, "Customer: "+*sale.CustomerName, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		if len(name) > 22 {
			name = name[:21] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "R$ "+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	if !sale.DiscountTotal.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-R$ "+sale.DiscountTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "R$ "+sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Payment ("+sale.PaymentMethod+"):", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "R$ "+sale.Total.StringFixed(2), "", 1, "R", false, 0, "")
	if sale.ChangeAmount != nil && !sale.ChangeAmount.IsZero() {
		pdf.CellFormat(col1+col2, 4, "Change:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "R$ "+sale.ChangeAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// CashReportData carries everything the closing report needs, precomputed by
// the caller so this file stays a pure renderer.
type CashReportData struct {
	Session         *model.CashSession
	OpenedByName    string
	ClosedByName    string
	CashSales       decimal.Decimal
	CardSales       decimal.Decimal
	PixSales        decimal.Decimal
	Withdrawals     decimal.Decimal
	Supplies        decimal.Decimal
	ExpectedBalance decimal.Decimal
	Movements       []model.CashMovement
}

// GenerateCashReportPDF renders the closing report of a cash session,
// including the reconciliation summary and the full movement ledger.
func GenerateCashReportPDF(data CashReportData, storeName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	s := data.Session
	fileName := fmt.Sprintf("cash_report_%s.pdf", s.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, storeName+" — Cash Session Report", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Drawer %d — session %s", s.Drawer, s.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Opened %s by %s", s.OpenedAt.Format(time.RFC822), data.OpenedByName), "", 1, "L", false, 0, "")
	if s.ClosedAt != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Closed %s by %s", s.ClosedAt.Format(time.RFC822), data.ClosedByName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	row := func(label string, value decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(120, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, "R$ "+value.StringFixed(2), "", 1, "R", false, 0, "")
	}

	row("Opening float", s.OpeningFloat, false)
	row("Cash sales", data.CashSales, false)
	row("Card sales (credit + debit)", data.CardSales, false)
	row("Pix sales", data.PixSales, false)
	row("Supplies", data.Supplies, false)
	row("Withdrawals", data.Withdrawals.Neg(), false)
	row("Expected drawer balance", data.ExpectedBalance, true)
	if s.CountedAmount != nil {
		row("Counted amount", *s.CountedAmount, true)
	}
	if s.Discrepancy != nil {
		row("Discrepancy", *s.Discrepancy, true)
	}
	if s.Notes != nil && *s.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "Notes: "+*s.Notes, "", "L", false)
	}
	pdf.Ln(5)

	// Ledger
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Movements", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(30, 6, "Time", "", 0, "L", false, 0, "")
	pdf.CellFormat(28, 6, "Type", "", 0, "L", false, 0, "")
	pdf.CellFormat(24, 6, "Method", "", 0, "L", false, 0, "")
	pdf.CellFormat(68, 6, "Description", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Amount", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, mov := range data.Movements {
		desc := mov.Description
		if len(desc) > 38 {
			desc = desc[:37] + "…"
		}
		pdf.CellFormat(30, 5, mov.CreatedAt.Format("15:04:05"), "", 0, "L", false, 0, "")
		pdf.CellFormat(28, 5, mov.Type, "", 0, "L", false, 0, "")
		pdf.CellFormat(24, 5, mov.PaymentMethod, "", 0, "L", false, 0, "")
		pdf.CellFormat(68, 5, desc, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, "R$ "+mov.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
