package scoring

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders whole US dollars with grouping, e.g. "$12,345" or "-$500".
func FormatCurrency(v float64) string {
	n := int64(math.Round(v))
	if n < 0 {
		return "-$" + printer.Sprintf("%d", -n)
	}
	return "$" + printer.Sprintf("%d", n)
}

// FormatPercent renders a rounded percentage number with grouping, without the sign.
func FormatPercent(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}
