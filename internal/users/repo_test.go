package users

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix1947/statementTracker/internal/storage"
	"github.com/nix1947/statementTracker/internal/validation"
)

func TestTranslateUserConstraint(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		field      string
	}{
		{"duplicate email", "users_email_key", "email"},
		{"duplicate username", "users_username_key", "username"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := &pgconn.PgError{Code: "23505", ConstraintName: tc.constraint}
			fe, ok := validation.AsFieldErrors(translateUserConstraint(raw))
			require.True(t, ok)
			assert.Contains(t, fe, tc.field)
		})
	}
}

func TestTranslateUserConstraintPassesThroughUnknown(t *testing.T) {
	unknown := &pgconn.PgError{Code: "23505", ConstraintName: "users_other_key"}
	assert.Equal(t, error(unknown), translateUserConstraint(unknown))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, translateUserConstraint(plain))
}

func TestRepoGetByIDRejectsMalformedID(t *testing.T) {
	// The guard runs before any query, so no pool is needed.
	r := &Repo{}
	_, err := r.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
