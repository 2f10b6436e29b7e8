package users

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nix1947/statementTracker/internal/auth"
	"github.com/nix1947/statementTracker/internal/validation"
)

// User represents a persisted user record. PasswordHash never leaves the
// server; handlers expose users through response DTOs.
type User struct {
	ID           string
	Email        string
	Username     string
	FullName     string
	Mobile       *string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	DateJoined   time.Time
	LastLogin    *time.Time
}

// New is the factory for fresh accounts: it normalizes the input and hashes
// the password before the record can ever be persisted.
func New(email, username, fullName string, mobile *string, password string) (*User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{
		Email:        email,
		Username:     username,
		FullName:     fullName,
		Mobile:       mobile,
		PasswordHash: hash,
		IsActive:     true,
	}
	u.Normalize()
	return u, nil
}

// Normalize cleans every text field in place. It runs before validation and
// again is reflected in what gets persisted, so stored values exactly match
// what was validated.
func (u *User) Normalize() {
	u.Email = validation.NormalizeEmail(u.Email)
	u.Username = validation.CollapseSpaces(u.Username)
	u.FullName = validation.CollapseSpaces(u.FullName)
	u.Mobile = validation.OptionalText(u.Mobile)
}

// Validate checks every invariant and collects all violations. It runs on
// create and on update alike; there is no diff-based shortcut.
func (u *User) Validate() validation.FieldErrors {
	errs := validation.FieldErrors{}

	if validation.Blank(u.Email) {
		errs.Add("email", "email is required")
	} else if !validation.EmailRe.MatchString(u.Email) {
		errs.Add("email", "enter a valid email address")
	}

	if validation.Blank(u.Username) {
		errs.Add("username", "username is required")
	} else {
		if len(u.Username) < 4 {
			errs.Add("username", "username must be at least 4 characters")
		}
		if !validation.UsernameRe.MatchString(u.Username) {
			errs.Add("username", "username can only contain letters, numbers and underscores")
		}
	}

	if validation.Blank(u.FullName) {
		errs.Add("full_name", "full name is required")
	} else {
		if utf8.RuneCountInString(u.FullName) < 3 {
			errs.Add("full_name", "full name must be at least 3 characters")
		}
		if len(strings.Fields(u.FullName)) < 2 {
			errs.Add("full_name", "please provide both first and last name")
		}
	}

	if u.Mobile != nil {
		mobile := *u.Mobile
		if !validation.DigitsRe.MatchString(mobile) {
			errs.Add("mobile", "mobile number should contain only digits")
		}
		if utf8.RuneCountInString(mobile) < 10 {
			errs.Add("mobile", "mobile number should be at least 10 digits")
		}
		if utf8.RuneCountInString(mobile) > 20 {
			errs.Add("mobile", "mobile number should not exceed 20 digits")
		}
	}

	return errs
}
