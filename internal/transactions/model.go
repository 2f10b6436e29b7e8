package transactions

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nix1947/statementTracker/internal/validation"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
	StatusReconciled Status = "Reconciled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled, StatusReconciled:
		return true
	}
	return false
}

// Payment channels accepted for the optional source field.
var validSources = map[string]struct{}{
	"Cheque":      {},
	"BankVoucher": {},
	"PhonePay":    {},
	"ConnectIPS":  {},
	"Esewa":       {},
	"Khalti":      {},
	"IMEPAY":      {},
	"NEPALPAY":    {},
	"Other":       {},
}

// Transaction is the central record: a manually entered deposit or refund
// against a bank, carrying the verification and reconciliation workflow
// state. The *Username fields are read-side joins and never written.
type Transaction struct {
	ID                string
	CreatedBy         string
	CreatedByUsername string
	CreatedDate       time.Time

	BankID        string
	BankName      string
	BankAccountNo string
	BankTransID   string

	BankDepositDate time.Time
	SystemValueDate time.Time

	ChequeNo          *string
	PolicyNo          *string
	TransactionDetail string

	SystemVoucherNo string

	Debit         decimal.Decimal
	Credit        decimal.Decimal
	VoucherAmount decimal.Decimal
	RefundAmount  *decimal.Decimal

	UsedInSystem bool

	// Audit trail: set only by lifecycle actions, never by generic updates.
	ReconciledBy             *string
	ReconciledByUsername     *string
	ReconciledDate           *time.Time
	SystemPostedBy           *string
	SystemPostedByUsername   *string
	SystemVerifiedBy         *string
	SystemVerifiedByUsername *string

	ReverseVoucherNo            *string
	ReversalCorrectionVoucherNo *string
	RefundVoucherNo             *string

	Remarks *string
	Source  *string

	Status     Status
	IsVerified bool
}

// Normalize strips every text field in place so the stored values exactly
// match what was validated.
func (t *Transaction) Normalize() {
	t.BankAccountNo = strings.TrimSpace(t.BankAccountNo)
	t.BankTransID = strings.TrimSpace(t.BankTransID)
	t.TransactionDetail = strings.TrimSpace(t.TransactionDetail)
	t.SystemVoucherNo = strings.TrimSpace(t.SystemVoucherNo)

	t.ChequeNo = validation.OptionalText(t.ChequeNo)
	t.PolicyNo = validation.OptionalText(t.PolicyNo)
	t.ReverseVoucherNo = validation.OptionalText(t.ReverseVoucherNo)
	t.ReversalCorrectionVoucherNo = validation.OptionalText(t.ReversalCorrectionVoucherNo)
	t.RefundVoucherNo = validation.OptionalText(t.RefundVoucherNo)
	t.Remarks = validation.OptionalText(t.Remarks)
	t.Source = validation.OptionalText(t.Source)
}
