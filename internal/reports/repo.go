package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct {
	DB *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{DB: pool}
}

// StatusCount is one row of the per-status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Summary aggregates the transactions visible to the caller over a period.
type Summary struct {
	Count        int64           `json:"count"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	TotalCredit  decimal.Decimal `json:"total_credit"`
	TotalVoucher decimal.Decimal `json:"total_voucher"`
	TotalRefund  decimal.Decimal `json:"total_refund"`
	Verified     int64           `json:"verified"`
	ByStatus     []StatusCount   `json:"by_status"`
}

// GetSummary computes totals over value dates in [from, to]. An empty
// createdBy aggregates every user's rows; the handler only passes that for
// staff.
func (r *Repo) GetSummary(ctx context.Context, createdBy string, from, to time.Time) (Summary, error) {
	var s Summary

	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(debit), 0),
		       COALESCE(SUM(credit), 0),
		       COALESCE(SUM(voucher_amount), 0),
		       COALESCE(SUM(refund_amount), 0),
		       COUNT(*) FILTER (WHERE is_verified)
		FROM transactions
		WHERE ($1 = '' OR created_by = $1::uuid)
		  AND system_value_date BETWEEN $2::date AND $3::date
	`, createdBy, from, to).Scan(&s.Count, &s.TotalDebit, &s.TotalCredit, &s.TotalVoucher, &s.TotalRefund, &s.Verified)
	if err != nil {
		return Summary{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT status, COUNT(*)
		FROM transactions
		WHERE ($1 = '' OR created_by = $1::uuid)
		  AND system_value_date BETWEEN $2::date AND $3::date
		GROUP BY status
		ORDER BY status
	`, createdBy, from, to)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return Summary{}, err
		}
		s.ByStatus = append(s.ByStatus, sc)
	}
	return s, rows.Err()
}
