package banks

import (
	"strings"

	"github.com/nix1947/statementTracker/internal/validation"
)

// Bank is a registry entry that transactions reference. Banks are never
// owned by a transaction; deleting one is refused while references exist.
type Bank struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	AccountNo   string  `json:"account_no"`
	Description *string `json:"description"`
}

// Normalize cleans the text fields before validation and persistence.
func (b *Bank) Normalize() {
	b.Name = validation.CollapseSpaces(b.Name)
	b.AccountNo = strings.TrimSpace(b.AccountNo)
	b.Description = validation.OptionalText(b.Description)
}

// Validate collects every violation; it runs on create and update alike.
func (b *Bank) Validate() validation.FieldErrors {
	errs := validation.FieldErrors{}

	if validation.Blank(b.Name) {
		errs.Add("name", "bank name is required")
	} else {
		if len(b.Name) < 3 {
			errs.Add("name", "bank name must be at least 3 characters")
		}
		if !validation.BankNameRe.MatchString(b.Name) {
			errs.Add("name", "bank name contains invalid characters")
		}
	}

	if validation.Blank(b.AccountNo) {
		errs.Add("account_no", "account number is required")
	}

	return errs
}
