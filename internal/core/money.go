// Package core provides the card and transaction model.
//
// This file contains the lenient numeric parsers used for form input and
// the currency formatting used for display.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ValidationWarning reports a form value that could not be parsed and was
// replaced with a default. It is never fatal.
type ValidationWarning struct {
	Field       string
	Input       string
	Substituted float64
}

func (w *ValidationWarning) Error() string {
	return fmt.Sprintf("%s: %q is not a number, using %g", w.Field, w.Input, w.Substituted)
}

// ParseAmountOrZero parses a transaction amount.
//
// Text that is not a finite number yields 0 and a warning; the caller is
// expected to log the warning and continue. Empty input yields 0 without a
// warning since nothing was submitted.
//
// Examples:
//   ParseAmountOrZero("4.50") -> 4.5, nil
//   ParseAmountOrZero("abc")  -> 0, warning
func ParseAmountOrZero(text string) (float64, *ValidationWarning) {
	return parseOrZero("amount", text)
}

// ParseLimitOrZero parses a credit limit with the same policy as ParseAmountOrZero.
func ParseLimitOrZero(text string) (float64, *ValidationWarning) {
	return parseOrZero("limit", text)
}

func parseOrZero(field, text string) (float64, *ValidationWarning) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationWarning{Field: field, Input: text, Substituted: 0}
	}
	return v, nil
}

// FormatCurrency formats a dollar value with thousands separators and two
// decimals, e.g. "$5,000.00".
func FormatCurrency(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}
