package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestResetTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	token := MakeResetToken(secret, "user-1", "hash-1", now)
	require.NoError(t, CheckResetToken(secret, "user-1", "hash-1", token, now))

	// Expired.
	assert.ErrorIs(t,
		CheckResetToken(secret, "user-1", "hash-1", token, now.Add(3*time.Hour)),
		ErrResetTokenInvalid)

	// Password changed since issuance.
	assert.ErrorIs(t,
		CheckResetToken(secret, "user-1", "hash-2", token, now),
		ErrResetTokenInvalid)

	// Different user.
	assert.ErrorIs(t,
		CheckResetToken(secret, "user-2", "hash-1", token, now),
		ErrResetTokenInvalid)

	// Garbage.
	assert.ErrorIs(t,
		CheckResetToken(secret, "user-1", "hash-1", "not.a.token", now),
		ErrResetTokenInvalid)
}

func TestActorRoles(t *testing.T) {
	var nilActor *Actor
	assert.False(t, nilActor.Admin())
	assert.False(t, nilActor.Authenticated())

	regular := &Actor{ID: "u1", IsActive: true}
	assert.True(t, regular.Authenticated())
	assert.False(t, regular.Admin())

	staff := &Actor{ID: "u2", IsActive: true, IsStaff: true}
	assert.True(t, staff.Admin())

	disabledStaff := &Actor{ID: "u3", IsStaff: true}
	assert.False(t, disabledStaff.Admin())
	assert.False(t, disabledStaff.Authenticated())
}
