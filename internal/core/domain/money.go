package domain

import (
	"fmt"
	"strings"
)

// Currency is the single currency the ledger operates in.
// Amounts everywhere are int64 minor units: 1050 means 10.50 TZS.
const Currency = "TZS"

// FormatAmount renders minor units as a human-readable amount,
// e.g. 123450 -> "1,234.50 TZS". Used in reason strings and webhooks.
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	whole := minor / 100
	cents := minor % 100
	return fmt.Sprintf("%s%s.%02d %s", sign, groupThousands(whole), cents, Currency)
}

func groupThousands(n int64) string {
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
