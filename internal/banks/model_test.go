package banks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankNormalize(t *testing.T) {
	desc := "  main settlement account  "
	b := &Bank{
		Name:        "  Nabil   Bank  Ltd.  ",
		AccountNo:   " 0123456789 ",
		Description: &desc,
	}
	b.Normalize()

	assert.Equal(t, "Nabil Bank Ltd.", b.Name)
	assert.Equal(t, "0123456789", b.AccountNo)
	require.NotNil(t, b.Description)
	assert.Equal(t, "main settlement account", *b.Description)
}

func TestBankNormalizeBlankDescription(t *testing.T) {
	desc := "   "
	b := &Bank{Name: "Nabil Bank", AccountNo: "0123", Description: &desc}
	b.Normalize()
	assert.Nil(t, b.Description)
}

func TestBankValidate(t *testing.T) {
	cases := []struct {
		name      string
		bankName  string
		accountNo string
		field     string
	}{
		{"missing name", "", "0123", "name"},
		{"whitespace-only name", "   ", "0123", "name"},
		{"short name", "AB", "0123", "name"},
		{"invalid characters", "Bank_One!", "0123", "name"},
		{"missing account number", "Nabil Bank", "", "account_no"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &Bank{Name: tc.bankName, AccountNo: tc.accountNo}
			b.Normalize()
			errs := b.Validate()
			assert.Contains(t, errs, tc.field)
		})
	}

	t.Run("allowed punctuation passes", func(t *testing.T) {
		b := &Bank{Name: "Standard Chartered Bank Nepal - K.T.M. & Co", AccountNo: "00-11"}
		b.Normalize()
		assert.True(t, b.Validate().Empty())
	})
}
