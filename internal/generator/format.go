package generator

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DateLayout is the display layout of every record date (MM/DD/YYYY).
const DateLayout = "01/02/2006"

// FormatDate renders a date as MM/DD/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDecimal renders a value with exactly two decimals.
func FormatDecimal(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatCurrency renders whole dollars as a US currency string, e.g. "$13,675.00".
func FormatCurrency(dollars int) string {
	p := message.NewPrinter(language.AmericanEnglish)
	if dollars < 0 {
		return p.Sprintf("-$%v", number.Decimal(-dollars, number.Scale(2)))
	}
	return p.Sprintf("$%v", number.Decimal(dollars, number.Scale(2)))
}
