// Package format renders amounts for human-readable output.
package format

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := NumericCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// Percent renders an annual rate given in percent, e.g. "4.50%".
func Percent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 2, 64) + "%"
}

// Years renders a loan term, dropping the fraction for whole years.
func Years(years float64) string {
	unit := " years"
	if years == 1 {
		unit = " year"
	}
	return strconv.FormatFloat(years, 'f', -1, 64) + unit
}
