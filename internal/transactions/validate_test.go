package transactions

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

// validTransaction builds a record that passes every rule; each test case
// mutates one aspect of it.
func validTransaction() Transaction {
	return Transaction{
		BankID:            "0b6cff2e-8a0c-4f32-9f6e-2b3c1a7d5e90",
		BankAccountNo:     "0123-456789",
		BankTransID:       "TXN-2025-001",
		BankDepositDate:   time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		SystemValueDate:   time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		TransactionDetail: "Premium deposit for June renewal",
		SystemVoucherNo:   "SV-2025/0042",
		Credit:            dec("15000.00"),
		VoucherAmount:     dec("15000.00"),
		Status:            StatusPending,
	}
}

func TestValidateAccepts(t *testing.T) {
	tx := validTransaction()
	tx.Normalize()
	assert.True(t, tx.Validate(testToday).Empty())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Transaction)
		field  string
	}{
		{"missing bank", func(tx *Transaction) { tx.BankID = "" }, "bank"},
		{"malformed bank id", func(tx *Transaction) { tx.BankID = "not-a-uuid" }, "bank"},
		{"missing deposit date", func(tx *Transaction) { tx.BankDepositDate = time.Time{} }, "bank_deposit_date"},
		{"future deposit date", func(tx *Transaction) {
			tx.BankDepositDate = testToday.AddDate(0, 0, 1)
			tx.SystemValueDate = testToday.AddDate(0, 0, 2)
		}, "bank_deposit_date"},
		{"future value date", func(tx *Transaction) { tx.SystemValueDate = testToday.AddDate(0, 0, 1) }, "system_value_date"},
		{"deposit after value date", func(tx *Transaction) {
			tx.BankDepositDate = time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
		}, "system_value_date"},
		{"negative debit", func(tx *Transaction) { tx.Debit = dec("-1"); tx.Credit = decimal.Zero }, "debit"},
		{"negative credit", func(tx *Transaction) { tx.Credit = dec("-1") }, "credit"},
		{"zero voucher amount", func(tx *Transaction) { tx.VoucherAmount = decimal.Zero }, "voucher_amount"},
		{"refund exceeds voucher", func(tx *Transaction) { tx.RefundAmount = decPtr("15000.01") }, "refund_amount"},
		{"negative refund", func(tx *Transaction) { tx.RefundAmount = decPtr("-5") }, "refund_amount"},
		{"too many decimal places", func(tx *Transaction) { tx.Credit = dec("100.005") }, "credit"},
		{"bad account charset", func(tx *Transaction) { tx.BankAccountNo = "acct_01" }, "bank_account_no"},
		{"missing bank trans id", func(tx *Transaction) { tx.BankTransID = "" }, "bank_trans_id"},
		{"bad cheque charset", func(tx *Transaction) { tx.ChequeNo = strPtr("CHQ/01") }, "cheque_no"},
		{"short detail", func(tx *Transaction) { tx.TransactionDetail = "too short" }, "transaction_detail"},
		{"missing voucher no", func(tx *Transaction) { tx.SystemVoucherNo = "" }, "system_voucher_no"},
		{"bad voucher charset", func(tx *Transaction) { tx.SystemVoucherNo = "SV 0042" }, "system_voucher_no"},
		{"bad refund voucher charset", func(tx *Transaction) { tx.RefundVoucherNo = strPtr("RV 01") }, "refund_voucher_no"},
		{"unknown source", func(tx *Transaction) { tx.Source = strPtr("CashApp") }, "source"},
		{"unknown status", func(tx *Transaction) { tx.Status = Status("Archived") }, "status"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			tx.Normalize()
			errs := tx.Validate(testToday)
			assert.Contains(t, errs, tc.field)
		})
	}
}

func TestValidateDetailLengthCountsCharacters(t *testing.T) {
	tx := validTransaction()
	tx.TransactionDetail = "ありがとうね" // 6 characters, 18 bytes
	errs := tx.Validate(testToday)
	assert.Contains(t, errs, "transaction_detail")

	tx.TransactionDetail = "プレミアム入金の補正です" // 12 characters
	assert.True(t, tx.Validate(testToday).Empty())
}

func TestValidateDebitAndCreditExclusive(t *testing.T) {
	tx := validTransaction()
	tx.Debit = dec("100")
	tx.Credit = dec("200")
	errs := tx.Validate(testToday)
	assert.Contains(t, errs, "debit")
	assert.Contains(t, errs, "credit")
}

func TestValidateDepositOnValueDateAllowed(t *testing.T) {
	tx := validTransaction()
	tx.BankDepositDate = tx.SystemValueDate
	assert.True(t, tx.Validate(testToday).Empty())
}

func TestValidateRefundEqualToVoucherAllowed(t *testing.T) {
	tx := validTransaction()
	tx.RefundAmount = decPtr("15000.00")
	assert.True(t, tx.Validate(testToday).Empty())
}

func TestValidateCollectsAllViolations(t *testing.T) {
	tx := Transaction{Status: StatusPending}
	errs := tx.Validate(testToday)
	require.False(t, errs.Empty())
	for _, field := range []string{
		"bank", "bank_deposit_date", "system_value_date",
		"bank_account_no", "bank_trans_id",
		"transaction_detail", "system_voucher_no", "voucher_amount",
	} {
		assert.Contains(t, errs, field, "expected violation on %s", field)
	}
}

func TestNormalizeBlanksOptionals(t *testing.T) {
	tx := validTransaction()
	tx.Remarks = strPtr("   ")
	tx.Source = strPtr(" Esewa ")
	tx.SystemVoucherNo = "  SV-1  "
	tx.Normalize()

	assert.Nil(t, tx.Remarks)
	require.NotNil(t, tx.Source)
	assert.Equal(t, "Esewa", *tx.Source)
	assert.Equal(t, "SV-1", tx.SystemVoucherNo)
}
