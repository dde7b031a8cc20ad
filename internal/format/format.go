// Package format renders amounts and dates the way Brazilian users read them.
package format

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

const (
	dateLayout    = "2006-01-02"
	dateOut       = "02/01/2006"
	dateTimeOut   = "02/01/2006 15:04:05"
	localDateTime = "2006-01-02T15:04:05"
	spaceDateTime = "2006-01-02 15:04:05"
)

// Currency formats v with pt-BR grouping and exactly two decimals,
// e.g. 1000 -> "1.000,00". NaN and infinities render as "0,00".
func Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0,00"
	}
	// Round half away from zero before printing so -0.004 does not become "-0,00".
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsZero() {
		return "0,00"
	}
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// CurrencyDecimal is Currency for exact amounts.
func CurrencyDecimal(d decimal.Decimal) string {
	return Currency(d.Round(2).InexactFloat64())
}

// Date renders "YYYY-MM-DD" or an RFC 3339 timestamp as "DD/MM/YYYY".
// Empty input gives ""; unparseable input is returned unchanged.
func Date(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, ok := parse(s)
	if !ok {
		return s
	}
	return t.Format(dateOut)
}

// DateTime renders a timestamp as "DD/MM/YYYY HH:MM:SS".
func DateTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, ok := parse(s)
	if !ok {
		return s
	}
	return t.Format(dateTimeOut)
}

// Period renders an inclusive range for report headers.
func Period(start, end time.Time) string {
	switch {
	case start.IsZero() && end.IsZero():
		return "todo o período"
	case start.IsZero():
		return "até " + end.Format(dateOut)
	case end.IsZero():
		return "desde " + start.Format(dateOut)
	}
	return start.Format(dateOut) + " a " + end.Format(dateOut)
}

func parse(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range []string{localDateTime, spaceDateTime, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
