package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nix1947/statementTracker/internal/storage"
	"github.com/nix1947/statementTracker/internal/validation"
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

var _ Store = (*Repo)(nil)

const txColumns = `
t.id::text, t.created_by::text, cu.username, t.created_date,
t.bank_id::text, b.name, t.bank_account_no, COALESCE(t.bank_trans_id, ''),
t.bank_deposit_date, t.system_value_date,
t.cheque_no, t.policy_no, t.transaction_detail,
t.system_voucher_no,
t.debit, t.credit, t.voucher_amount, t.refund_amount,
t.used_in_system,
t.reconciled_by::text, ru.username, t.reconciled_date,
t.system_posted_by::text, pu.username,
t.system_verified_by::text, vu.username,
t.reverse_voucher_no, t.reversal_correction_voucher_no, t.refund_voucher_no,
t.remarks, t.source, t.status, t.is_verified`

const txJoins = `
FROM transactions t
JOIN users cu ON cu.id = t.created_by
JOIN banks b ON b.id = t.bank_id
LEFT JOIN users ru ON ru.id = t.reconciled_by
LEFT JOIN users pu ON pu.id = t.system_posted_by
LEFT JOIN users vu ON vu.id = t.system_verified_by`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var (
		t      Transaction
		refund decimal.NullDecimal
		status string
	)
	err := row.Scan(
		&t.ID, &t.CreatedBy, &t.CreatedByUsername, &t.CreatedDate,
		&t.BankID, &t.BankName, &t.BankAccountNo, &t.BankTransID,
		&t.BankDepositDate, &t.SystemValueDate,
		&t.ChequeNo, &t.PolicyNo, &t.TransactionDetail,
		&t.SystemVoucherNo,
		&t.Debit, &t.Credit, &t.VoucherAmount, &refund,
		&t.UsedInSystem,
		&t.ReconciledBy, &t.ReconciledByUsername, &t.ReconciledDate,
		&t.SystemPostedBy, &t.SystemPostedByUsername,
		&t.SystemVerifiedBy, &t.SystemVerifiedByUsername,
		&t.ReverseVoucherNo, &t.ReversalCorrectionVoucherNo, &t.RefundVoucherNo,
		&t.Remarks, &t.Source, &status, &t.IsVerified,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if refund.Valid {
		t.RefundAmount = &refund.Decimal
	}
	t.Status = Status(status)
	return &t, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Transaction, error) {
	// A malformed id cannot match any row; rejecting it here keeps the
	// ::uuid cast from raising a database error on client input.
	if uuid.Validate(id) != nil {
		return nil, storage.ErrNotFound
	}
	row := r.Pool.QueryRow(ctx,
		`SELECT `+txColumns+txJoins+` WHERE t.id = $1::uuid`, id)
	return scanTransaction(row)
}

// List returns visible rows newest first. Zero-valued filter fields are
// ignored by the query.
func (r *Repo) List(ctx context.Context, f Filter) ([]Transaction, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.Pool.Query(ctx, `
SELECT `+txColumns+txJoins+`
WHERE ($1 = '' OR t.created_by = $1::uuid)
  AND ($2 = '' OR t.bank_id = $2::uuid)
  AND ($3 = '' OR t.status = $3)
  AND ($4::date IS NULL OR t.system_value_date >= $4::date)
  AND ($5::date IS NULL OR t.system_value_date <= $5::date)
ORDER BY t.created_date DESC
LIMIT $6 OFFSET $7`,
		f.CreatedBy, f.BankID, f.Status, f.From, f.To, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repo) VoucherNoTaken(ctx context.Context, voucherNo, excludeID string) (bool, error) {
	var found bool
	err := r.Pool.QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM transactions
    WHERE system_voucher_no = $1 AND ($2 = '' OR id <> $2::uuid)
)`, voucherNo, excludeID).Scan(&found)
	return found, err
}

func (r *Repo) BankTransTaken(ctx context.Context, bankID, bankTransID, excludeID string) (bool, error) {
	var found bool
	err := r.Pool.QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM transactions
    WHERE bank_id = $1::uuid AND bank_trans_id = $2 AND ($3 = '' OR id <> $3::uuid)
)`, bankID, bankTransID, excludeID).Scan(&found)
	return found, err
}

func (r *Repo) Insert(ctx context.Context, t *Transaction) (*Transaction, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `
INSERT INTO transactions (
    created_by, bank_id, bank_account_no, bank_trans_id,
    bank_deposit_date, system_value_date,
    cheque_no, policy_no, transaction_detail, system_voucher_no,
    debit, credit, voucher_amount, refund_amount,
    used_in_system, reverse_voucher_no, reversal_correction_voucher_no,
    refund_voucher_no, remarks, source, status, is_verified
) VALUES (
    $1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10,
    $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
)
RETURNING id::text`,
		t.CreatedBy, t.BankID, t.BankAccountNo, t.BankTransID,
		t.BankDepositDate, t.SystemValueDate,
		t.ChequeNo, t.PolicyNo, t.TransactionDetail, t.SystemVoucherNo,
		t.Debit, t.Credit, t.VoucherAmount, refundValue(t.RefundAmount),
		t.UsedInSystem, t.ReverseVoucherNo, t.ReversalCorrectionVoucherNo,
		t.RefundVoucherNo, t.Remarks, t.Source, string(t.Status), t.IsVerified,
	).Scan(&id)
	if err != nil {
		return nil, translateTxConstraint(err)
	}
	return r.GetByID(ctx, id)
}

// Update rewrites the editable columns. Workflow state and audit stamps are
// carried over by the service, never chosen here.
func (r *Repo) Update(ctx context.Context, t *Transaction) (*Transaction, error) {
	tag, err := r.Pool.Exec(ctx, `
UPDATE transactions
SET bank_id = $2::uuid, bank_account_no = $3, bank_trans_id = $4,
    bank_deposit_date = $5, system_value_date = $6,
    cheque_no = $7, policy_no = $8, transaction_detail = $9,
    system_voucher_no = $10,
    debit = $11, credit = $12, voucher_amount = $13, refund_amount = $14,
    used_in_system = $15, reverse_voucher_no = $16,
    reversal_correction_voucher_no = $17, refund_voucher_no = $18,
    remarks = $19, source = $20, status = $21
WHERE id = $1::uuid`,
		t.ID, t.BankID, t.BankAccountNo, t.BankTransID,
		t.BankDepositDate, t.SystemValueDate,
		t.ChequeNo, t.PolicyNo, t.TransactionDetail,
		t.SystemVoucherNo,
		t.Debit, t.Credit, t.VoucherAmount, refundValue(t.RefundAmount),
		t.UsedInSystem, t.ReverseVoucherNo,
		t.ReversalCorrectionVoucherNo, t.RefundVoucherNo,
		t.Remarks, t.Source, string(t.Status))
	if err != nil {
		return nil, translateTxConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}
	return r.GetByID(ctx, t.ID)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkVerified is a conditional write: the precondition is re-checked at
// write time so the losing side of a race observes zero affected rows.
func (r *Repo) MarkVerified(ctx context.Context, id, actorID string) (bool, error) {
	tag, err := r.Pool.Exec(ctx, `
UPDATE transactions
SET is_verified = TRUE, system_verified_by = $2::uuid
WHERE id = $1::uuid AND is_verified = FALSE`, id, actorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repo) MarkReconciled(ctx context.Context, id, actorID string, date time.Time) (bool, error) {
	tag, err := r.Pool.Exec(ctx, `
UPDATE transactions
SET status = 'Reconciled', reconciled_by = $2::uuid, reconciled_date = $3
WHERE id = $1::uuid AND status <> 'Reconciled'`, id, actorID, date)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func refundValue(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// translateTxConstraint turns the storage layer's authoritative constraint
// rejections into the same field-keyed shape the rule engine produces.
func translateTxConstraint(err error) error {
	if constraint, ok := storage.UniqueConstraint(err); ok {
		errs := validation.FieldErrors{}
		switch constraint {
		case "transactions_system_voucher_no_key":
			errs.Add("system_voucher_no", "a transaction with this voucher number already exists")
		case "transactions_bank_trans_key":
			errs.Add("bank_trans_id", "this bank transaction id is already recorded for this bank")
		default:
			return err
		}
		return errs
	}
	if constraint, ok := storage.ForeignKeyConstraint(err); ok {
		errs := validation.FieldErrors{}
		switch constraint {
		case "transactions_bank_id_fkey":
			errs.Add("bank", "bank does not exist")
		case "transactions_created_by_fkey":
			errs.Add("created_by", "user does not exist")
		default:
			return err
		}
		return errs
	}
	return err
}
