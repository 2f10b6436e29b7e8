// Package storage holds the bits of the persistence contract shared by all
// repositories: sentinel errors and Postgres constraint-error inspection.
// The database is the source of truth for uniqueness and foreign keys; the
// validators' own lookups are advisory, so every repository must translate
// constraint violations raised at write time.
package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrReferenced is returned when a delete is refused because other rows
	// still reference the target (ON DELETE RESTRICT).
	ErrReferenced = errors.New("record is still referenced")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// UniqueConstraint returns the violated unique-constraint name when err is
// a Postgres unique violation.
func UniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsForeignKeyViolation reports whether err is a Postgres FK violation,
// raised either by inserting a dangling reference or by deleting a row
// that is still referenced.
func IsForeignKeyViolation(err error) bool {
	_, ok := ForeignKeyConstraint(err)
	return ok
}

// ForeignKeyConstraint returns the violated FK constraint name when err is
// a Postgres foreign-key violation.
func ForeignKeyConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
