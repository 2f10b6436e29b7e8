package reports

import (
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTrimTo(t *testing.T) {
	assert.Equal(t, "short", trimTo("short", 10))
	assert.Equal(t, "padded", trimTo("  padded  ", 10))

	got := trimTo("abcdefghij", 5)
	assert.Equal(t, "abcd…", got)

	// Multibyte input must stay valid UTF-8 after shortening.
	got = trimTo("保険料の入金に関する説明文です", 8)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "保険料の入金に…", got)
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":         "0.00",
		"15000":     "15,000.00",
		"1234567.5": "1,234,567.50",
		"-98765.4":  "-98,765.40",
		"999":       "999.00",
	}
	for in, want := range cases {
		d, err := decimal.NewFromString(in)
		assert.NoError(t, err)
		assert.Equal(t, want, formatAmount(d))
	}
}
