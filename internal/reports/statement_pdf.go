package reports

import (
	"bytes"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nix1947/statementTracker/internal/transactions"
)

// statementMaxRows bounds how many rows one statement fetches and renders.
const statementMaxRows = 200

// buildStatementPDF renders a transaction statement for the given period.
// The caller has already filtered items down to what the actor may see.
func buildStatementPDF(items []transactions.Transaction, summary Summary, from, to string, truncated bool) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(12, 14, 12)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Transaction Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+from+" to "+to)
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{68, 68, 68, 68}
	pdf.CellFormat(sumW[0], 10, "Debit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Credit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Vouchers", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[3], 10, "Refunds", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, formatAmount(summary.TotalDebit), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, formatAmount(summary.TotalCredit), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, formatAmount(summary.TotalVoucher), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[3], 10, formatAmount(summary.TotalRefund), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	colW := []float64{24, 42, 44, 58, 28, 28, 26, 22}
	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(colW[0], 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "VOUCHER NO", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[2], 8, "BANK", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[3], 8, "DETAIL", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[4], 8, "DEBIT", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colW[5], 8, "CREDIT", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colW[6], 8, "STATUS", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[7], 8, "VERIFIED", "1", 1, "C", true, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(30, 30, 30)
	}
	writeHeader()

	for _, t := range items {
		if pdf.GetY() > 180 {
			pdf.AddPage()
			writeHeader()
		}

		verified := "no"
		if t.IsVerified {
			verified = "yes"
		}

		pdf.CellFormat(colW[0], 7, t.SystemValueDate.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 7, trimTo(t.SystemVoucherNo, 24), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[2], 7, trimTo(t.BankName, 26), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 7, trimTo(t.TransactionDetail, 36), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[4], 7, formatAmount(t.Debit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[5], 7, formatAmount(t.Credit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[6], 7, string(t.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[7], 7, verified, "1", 1, "C", false, 0, "")
	}

	if truncated {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 7, "…statement truncated; narrow the period to see every row", "1", 1, "C", false, 0, "")
	}

	pdf.SetY(-16)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 8, "Generated "+time.Now().UTC().Format(time.RFC3339), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// trimTo shortens s to max characters, never splitting a multibyte rune.
func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// formatAmount renders a money value with thousands separators and two
// decimal places.
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	l := len(whole)
	for i := 0; i < l; i++ {
		b.WriteByte(whole[i])
		rem := l - i - 1
		if rem > 0 && rem%3 == 0 {
			b.WriteByte(',')
		}
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
