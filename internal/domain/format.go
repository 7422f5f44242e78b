package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount with Indonesian digit grouping, e.g.
// 149000 -> "Rp149.000". Display only; arithmetic stays on integers.
func FormatRupiah(amount int64) string {
	if amount < 0 {
		amount = 0
	}
	return rupiahPrinter.Sprintf("Rp%v", number.Decimal(amount))
}
