package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix1947/statementTracker/internal/auth"
	"github.com/nix1947/statementTracker/internal/validation"
)

func validUser() *User {
	return &User{
		Email:    "ram@example.com",
		Username: "ram_k",
		FullName: "Ram Karki",
		IsActive: true,
	}
}

func TestUserNormalize(t *testing.T) {
	mobile := " 9841000000 "
	u := &User{
		Email:    "  Ram@Example.COM ",
		Username: " ram_k ",
		FullName: "  Ram   Bahadur   Karki ",
		Mobile:   &mobile,
	}
	u.Normalize()

	assert.Equal(t, "ram@example.com", u.Email)
	assert.Equal(t, "ram_k", u.Username)
	assert.Equal(t, "Ram Bahadur Karki", u.FullName)
	require.NotNil(t, u.Mobile)
	assert.Equal(t, "9841000000", *u.Mobile)
}

func TestUserNormalizeBlankMobileBecomesNil(t *testing.T) {
	mobile := "   "
	u := validUser()
	u.Mobile = &mobile
	u.Normalize()
	assert.Nil(t, u.Mobile)
}

func TestUserValidate(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	cases := []struct {
		name   string
		mutate func(*User)
		field  string
	}{
		{"missing email", func(u *User) { u.Email = "" }, "email"},
		{"bad email", func(u *User) { u.Email = "not-an-email" }, "email"},
		{"short username", func(u *User) { u.Username = "ram" }, "username"},
		{"username charset", func(u *User) { u.Username = "ram.k!" }, "username"},
		{"single-word full name", func(u *User) { u.FullName = "Ramkarki" }, "full_name"},
		{"mobile letters", func(u *User) { u.Mobile = strPtr("98410ABCDE") }, "mobile"},
		{"mobile too short", func(u *User) { u.Mobile = strPtr("12345") }, "mobile"},
		{"mobile too long", func(u *User) { u.Mobile = strPtr("123456789012345678901") }, "mobile"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := validUser()
			tc.mutate(u)
			u.Normalize()
			errs := u.Validate()
			assert.Contains(t, errs, tc.field)
		})
	}

	t.Run("valid user passes", func(t *testing.T) {
		u := validUser()
		u.Normalize()
		assert.True(t, u.Validate().Empty())
	})

	t.Run("minimal two-word name is valid", func(t *testing.T) {
		// Three characters with two words is the shortest acceptable name.
		u := validUser()
		u.FullName = "R K"
		u.Normalize()
		assert.True(t, u.Validate().Empty())
	})

	t.Run("short full name collects both violations", func(t *testing.T) {
		u := validUser()
		u.FullName = "AB"
		u.Normalize()
		errs := u.Validate()
		// Below minimum length and missing a last name: both reported at once.
		assert.Len(t, errs["full_name"], 2)
	})
}

func TestNewHashesPassword(t *testing.T) {
	u, err := New("sita@example.com", "sita_s", "Sita Sharma", nil, "plain-password")
	require.NoError(t, err)

	assert.NotEqual(t, "plain-password", u.PasswordHash)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "plain-password"))
	assert.True(t, u.IsActive)
	assert.False(t, u.IsStaff)
}

// fakeStore backs service tests without a database.
type fakeStore struct {
	emails    map[string]string // email -> user id
	usernames map[string]string
	inserted  *User
	updated   *User
}

func newFakeStore() *fakeStore {
	return &fakeStore{emails: map[string]string{}, usernames: map[string]string{}}
}

func (f *fakeStore) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	id, ok := f.emails[email]
	return ok && id != excludeID, nil
}

func (f *fakeStore) UsernameTaken(_ context.Context, username, excludeID string) (bool, error) {
	id, ok := f.usernames[username]
	return ok && id != excludeID, nil
}

func (f *fakeStore) Insert(_ context.Context, u *User) (*User, error) {
	f.inserted = u
	return u, nil
}

func (f *fakeStore) Update(_ context.Context, u *User) (*User, error) {
	f.updated = u
	return u, nil
}

func TestServiceCreateRejectsDuplicates(t *testing.T) {
	store := newFakeStore()
	store.emails["ram@example.com"] = "other-id"
	store.usernames["ram_k"] = "other-id"
	svc := NewService(store)

	_, err := svc.Create(context.Background(), validUser())
	require.Error(t, err)

	fe, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "email")
	assert.Contains(t, fe, "username")
	assert.Nil(t, store.inserted)
}

func TestServiceUpdateIgnoresOwnRow(t *testing.T) {
	store := newFakeStore()
	store.emails["ram@example.com"] = "user-1"
	store.usernames["ram_k"] = "user-1"
	svc := NewService(store)

	u := validUser()
	u.ID = "user-1"
	saved, err := svc.Update(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "user-1", saved.ID)
	assert.NotNil(t, store.updated)
}

func TestServiceCreateNormalizesBeforeSave(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	u := validUser()
	u.Email = "  Ram@Example.com "
	_, err := svc.Create(context.Background(), u)
	require.NoError(t, err)
	require.NotNil(t, store.inserted)
	assert.Equal(t, "ram@example.com", store.inserted.Email)
}
