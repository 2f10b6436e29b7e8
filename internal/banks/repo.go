package banks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nix1947/statementTracker/internal/storage"
	"github.com/nix1947/statementTracker/internal/validation"
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func scanBank(row pgx.Row) (*Bank, error) {
	var b Bank
	err := row.Scan(&b.ID, &b.Name, &b.AccountNo, &b.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Bank, error) {
	// Malformed client ids are a miss, not a database error.
	if uuid.Validate(id) != nil {
		return nil, storage.ErrNotFound
	}
	row := r.Pool.QueryRow(ctx, `
SELECT id::text, name, account_no, NULLIF(description, '')
FROM banks WHERE id = $1::uuid`, id)
	return scanBank(row)
}

func (r *Repo) List(ctx context.Context) ([]Bank, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT id::text, name, account_no, NULLIF(description, '')
FROM banks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// NameTaken is the advisory pre-check; it is case-insensitive so "NIC Asia"
// and "nic asia" cannot coexist, matching the API-level rule even though the
// unique index compares exact values.
func (r *Repo) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var found bool
	err := r.Pool.QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM banks
    WHERE lower(name) = lower($1) AND ($2 = '' OR id <> $2::uuid)
)`, name, excludeID).Scan(&found)
	return found, err
}

func (r *Repo) Insert(ctx context.Context, b *Bank) (*Bank, error) {
	row := r.Pool.QueryRow(ctx, `
INSERT INTO banks (name, account_no, description)
VALUES ($1, $2, COALESCE($3, ''))
RETURNING id::text, name, account_no, NULLIF(description, '')`,
		b.Name, b.AccountNo, b.Description)

	saved, err := scanBank(row)
	if err != nil {
		return nil, translateBankConstraint(err)
	}
	return saved, nil
}

func (r *Repo) Update(ctx context.Context, b *Bank) (*Bank, error) {
	row := r.Pool.QueryRow(ctx, `
UPDATE banks
SET name = $2, account_no = $3, description = COALESCE($4, '')
WHERE id = $1::uuid
RETURNING id::text, name, account_no, NULLIF(description, '')`,
		b.ID, b.Name, b.AccountNo, b.Description)

	saved, err := scanBank(row)
	if err != nil {
		return nil, translateBankConstraint(err)
	}
	return saved, nil
}

// Delete refuses to remove a bank that transactions still reference.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return storage.ErrNotFound
	}
	tag, err := r.Pool.Exec(ctx, `DELETE FROM banks WHERE id = $1::uuid`, id)
	if storage.IsForeignKeyViolation(err) {
		return storage.ErrReferenced
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func translateBankConstraint(err error) error {
	if constraint, ok := storage.UniqueConstraint(err); ok && constraint == "banks_name_key" {
		errs := validation.FieldErrors{}
		errs.Add("name", "a bank with this name already exists")
		return errs
	}
	return err
}
