package printer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount as "$X,XXX.XX", rounding half away from zero
func FormatMoney(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	s := amount.Abs().StringFixed(2)

	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos:]

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString("$")
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(decPart)
	return b.String()
}

// FormatPercent trims trailing zeros: 9 -> "9%", 12.50 -> "12.5%"
func FormatPercent(pct decimal.Decimal) string {
	return pct.String() + "%"
}

// Truncate shortens s to maxLen runes with an ellipsis
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
