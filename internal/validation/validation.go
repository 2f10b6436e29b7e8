// Package validation holds the field normalizer and the error shapes shared
// by every entity's rule checks.
package validation

import (
	"regexp"
	"sort"
	"strings"
)

// Charset rules per field family. ASCII only; whitespace is handled by the
// normalizer before these run.
var (
	VoucherNoRe = regexp.MustCompile(`^[A-Za-z0-9\-_/]+$`)
	AccountNoRe = regexp.MustCompile(`^[A-Za-z0-9\-]+$`)
	BankNameRe  = regexp.MustCompile(`^[A-Za-z0-9 \-.&]+$`)
	UsernameRe  = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	EmailRe     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	DigitsRe    = regexp.MustCompile(`^[0-9]+$`)
)

var spaceRunRe = regexp.MustCompile(`\s+`)

// FieldErrors maps a field name to the list of violations found for it.
// All rule checks collect into one map so a client can fix every problem
// in a single round trip.
type FieldErrors map[string][]string

// Add appends a message for a field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Merge folds another error set into this one.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		fe[field] = append(fe[field], msgs...)
	}
}

// Empty reports whether no violations were recorded.
func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// Error renders a stable, human-readable summary. FieldErrors is returned
// through error values so repositories and services can surface it without
// a separate channel.
func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(strings.Join(fe[f], ", "))
	}
	return b.String()
}

// AsFieldErrors unwraps err into FieldErrors if it carries one.
func AsFieldErrors(err error) (FieldErrors, bool) {
	fe, ok := err.(FieldErrors)
	return fe, ok
}

// CollapseSpaces trims the string and collapses internal whitespace runs to
// single spaces. Used for names and other display text.
func CollapseSpaces(s string) string {
	return spaceRunRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// OptionalText trims an optional field and coerces empty-after-trim values
// to nil so they persist as NULL rather than "".
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Blank reports whether a value is empty once whitespace is stripped. A
// whitespace-only value is treated as absent for required-field checks.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
