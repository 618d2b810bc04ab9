package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Amounts are compared processor-side as whole-currency-unit integers with
// the decimal separator removed: 19.99 becomes 1999. Only the two-decimal
// shape is supported; anything else is a validation error, never rounded.

// ParseAmount converts a decimal amount string ("19.99", "5", "5.1") into
// its integer-cents form. Negative values and more than two decimal digits
// are rejected.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, NewInvalidAmountError(s)
	}
	if strings.HasPrefix(s, "-") {
		return 0, NewInvalidAmountError(s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, NewInvalidAmountError(s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, NewInvalidAmountError(s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, NewInvalidAmountError(s)
	}

	return units*100 + cents, nil
}

// FormatAmount renders integer cents back to the two-decimal string form.
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ChunkReference formats a Multibanco reference in groups of three digits
// for display ("123456789" -> "123 456 789").
func ChunkReference(ref string) string {
	var b strings.Builder
	for i, r := range ref {
		if i > 0 && i%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
