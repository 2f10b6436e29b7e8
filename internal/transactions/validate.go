package transactions

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nix1947/statementTracker/internal/validation"
)

// Validate runs the full rule set against a normalized snapshot and collects
// every violation; nothing fails fast. today is the reference date for the
// no-future-dates invariants. The same checks run on create, update, verify
// and reconcile: a partial update can never sidestep a rule.
func (t *Transaction) Validate(today time.Time) validation.FieldErrors {
	errs := validation.FieldErrors{}

	if t.BankID == "" {
		errs.Add("bank", "bank is required")
	} else if uuid.Validate(t.BankID) != nil {
		errs.Add("bank", "bank must be a valid bank id")
	}

	t.validateDates(today, errs)
	t.validateAmounts(errs)

	if t.BankAccountNo == "" {
		errs.Add("bank_account_no", "account number is required")
	} else if !validation.AccountNoRe.MatchString(t.BankAccountNo) {
		errs.Add("bank_account_no", "account number contains invalid characters")
	}

	if t.BankTransID == "" {
		errs.Add("bank_trans_id", "bank transaction id is required")
	}

	if t.ChequeNo != nil && !validation.AccountNoRe.MatchString(*t.ChequeNo) {
		errs.Add("cheque_no", "cheque number contains invalid characters")
	}

	if utf8.RuneCountInString(t.TransactionDetail) < 10 {
		errs.Add("transaction_detail", "detail must be at least 10 characters")
	}

	if t.SystemVoucherNo == "" {
		errs.Add("system_voucher_no", "voucher number is required")
	} else if !validation.VoucherNoRe.MatchString(t.SystemVoucherNo) {
		errs.Add("system_voucher_no", "voucher number contains invalid characters")
	}

	optionalVouchers := map[string]*string{
		"reverse_voucher_no":             t.ReverseVoucherNo,
		"reversal_correction_voucher_no": t.ReversalCorrectionVoucherNo,
		"refund_voucher_no":              t.RefundVoucherNo,
	}
	for field, val := range optionalVouchers {
		if val != nil && !validation.VoucherNoRe.MatchString(*val) {
			errs.Add(field, field+" contains invalid characters")
		}
	}

	if t.Source != nil {
		if _, ok := validSources[*t.Source]; !ok {
			errs.Add("source", "source is not a recognized payment channel")
		}
	}

	if !t.Status.Valid() {
		errs.Add("status", "status must be one of Pending, Completed, Cancelled, Reconciled")
	}

	return errs
}

func (t *Transaction) validateDates(today time.Time, errs validation.FieldErrors) {
	today = dateOnly(today)

	depositSet := !t.BankDepositDate.IsZero()
	valueSet := !t.SystemValueDate.IsZero()

	if !depositSet {
		errs.Add("bank_deposit_date", "deposit date is required")
	} else if dateOnly(t.BankDepositDate).After(today) {
		errs.Add("bank_deposit_date", "deposit date cannot be in the future")
	}

	if !valueSet {
		errs.Add("system_value_date", "value date is required")
	} else if dateOnly(t.SystemValueDate).After(today) {
		errs.Add("system_value_date", "value date cannot be in the future")
	}

	if depositSet && valueSet && dateOnly(t.BankDepositDate).After(dateOnly(t.SystemValueDate)) {
		errs.Add("system_value_date", "value date cannot be before deposit date")
	}
}

// validateAmounts uses exact decimal comparison throughout; no floats touch
// monetary bounds.
func (t *Transaction) validateAmounts(errs validation.FieldErrors) {
	zero := decimal.Zero

	if t.Debit.LessThan(zero) {
		errs.Add("debit", "debit amount cannot be negative")
	}
	if t.Credit.LessThan(zero) {
		errs.Add("credit", "credit amount cannot be negative")
	}
	if t.Debit.GreaterThan(zero) && t.Credit.GreaterThan(zero) {
		errs.Add("debit", "cannot have both debit and credit amounts")
		errs.Add("credit", "cannot have both debit and credit amounts")
	}

	if !t.VoucherAmount.GreaterThan(zero) {
		errs.Add("voucher_amount", "voucher amount must be positive")
	}

	if t.RefundAmount != nil {
		if t.RefundAmount.LessThan(zero) {
			errs.Add("refund_amount", "refund amount cannot be negative")
		}
		if t.RefundAmount.GreaterThan(t.VoucherAmount) {
			errs.Add("refund_amount", "refund cannot exceed voucher amount")
		}
	}

	fractions := map[string]decimal.Decimal{
		"debit":          t.Debit,
		"credit":         t.Credit,
		"voucher_amount": t.VoucherAmount,
	}
	if t.RefundAmount != nil {
		fractions["refund_amount"] = *t.RefundAmount
	}
	for field, amount := range fractions {
		if amount.Exponent() < -2 {
			errs.Add(field, "amount cannot have more than 2 decimal places")
		}
	}
}

// dateOnly truncates a timestamp to its calendar date in UTC, mirroring the
// DATE columns the values are compared against.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
