// Package money handles currency amounts as integer cents.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders cents as a Brazilian real string, e.g. 123456 ->
// "R$ 1.234,56".
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return brl.Sprintf("%sR$ %d,%02d", sign, cents/100, cents%100)
}

// Split divides total cents into n near-equal parts. The last part
// absorbs the rounding remainder so the parts always sum to total.
func Split(total int64, n int) []int64 {
	if n <= 0 {
		return nil
	}

	base := total / int64(n)
	parts := make([]int64, n)

	for i := range parts {
		parts[i] = base
	}

	parts[n-1] += total - base*int64(n)

	return parts
}
