package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatCLP renders whole Chilean pesos the way es-CL does: "$1.234.567".
func FormatCLP(amount *decimal.Decimal) string {
	if amount == nil {
		return ""
	}

	rounded := amount.Round(0)
	digits := rounded.Abs().String()

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseCLP keeps only the digits of value. Input with no digits, or a zero
// amount, yields nil.
func ParseCLP(value string) *decimal.Decimal {
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return nil
	}

	d, err := decimal.NewFromString(digits.String())
	if err != nil || d.IsZero() {
		return nil
	}
	return &d
}

// FormatFechaCL renders t as "dd-mm-yyyy, hh:mm" in loc.
func FormatFechaCL(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("02-01-2006, 15:04")
}
