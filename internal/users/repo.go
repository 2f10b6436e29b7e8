package users

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

const userColumns = `
id::text, email, username, full_name, mobile, password_hash,
is_active, is_staff, is_superuser, date_joined, last_login`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FullName, &u.Mobile, &u.PasswordHash,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.DateJoined, &u.LastLogin,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	// Path and token ids come straight from clients; a malformed value is
	// treated as no match rather than letting the ::uuid cast error out.
	if uuid.Validate(id) != nil {
		return nil, storage.ErrNotFound
	}
	row := r.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id)
	return scanUser(row)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *Repo) List(ctx context.Context) ([]User, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY date_joined DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// EmailTaken and UsernameTaken are advisory pre-checks used by the rule
// engine; the unique constraints decide races at write time.
func (r *Repo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND ($2 = '' OR id <> $2::uuid))`,
		email, excludeID)
}

func (r *Repo) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND ($2 = '' OR id <> $2::uuid))`,
		username, excludeID)
}

func (r *Repo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	err := r.Pool.QueryRow(ctx, query, args...).Scan(&found)
	return found, err
}

// Insert persists a new user and returns it with generated fields filled in.
// Unique violations come back as field-keyed validation errors.
func (r *Repo) Insert(ctx context.Context, u *User) (*User, error) {
	row := r.Pool.QueryRow(ctx, `
INSERT INTO users (email, username, full_name, mobile, password_hash, is_active, is_staff, is_superuser)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+userColumns,
		u.Email, u.Username, u.FullName, u.Mobile, u.PasswordHash,
		u.IsActive, u.IsStaff, u.IsSuperuser)

	saved, err := scanUser(row)
	if err != nil {
		return nil, translateUserConstraint(err)
	}
	return saved, nil
}

// Update rewrites the mutable profile fields. Role flags and the password
// hash are written as given; callers control what they changed.
func (r *Repo) Update(ctx context.Context, u *User) (*User, error) {
	row := r.Pool.QueryRow(ctx, `
UPDATE users
SET email = $2, username = $3, full_name = $4, mobile = $5,
    password_hash = $6, is_active = $7, is_staff = $8, is_superuser = $9
WHERE id = $1::uuid
RETURNING `+userColumns,
		u.ID, u.Email, u.Username, u.FullName, u.Mobile,
		u.PasswordHash, u.IsActive, u.IsStaff, u.IsSuperuser)

	saved, err := scanUser(row)
	if err != nil {
		return nil, translateUserConstraint(err)
	}
	return saved, nil
}

func (r *Repo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1::uuid`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Repo) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.Pool.Exec(ctx,
		`UPDATE users SET last_login = now() WHERE id = $1::uuid`, id)
	return err
}

// Delete removes a user. It is refused while transactions still reference
// the account (ON DELETE RESTRICT on transactions.created_by).
func (r *Repo) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return storage.ErrNotFound
	}
	tag, err := r.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1::uuid`, id)
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

func translateUserConstraint(err error) error {
	constraint, ok := storage.UniqueConstraint(err)
	if !ok {
		return err
	}
	errs := validation.FieldErrors{}
	switch constraint {
	case "users_email_key":
		errs.Add("email", "a user with this email already exists")
	case "users_username_key":
		errs.Add("username", "a user with this username already exists")
	default:
		return err
	}
	return errs
}
