package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// NotApplicable is displayed for prices that are missing or explicitly absent.
const NotApplicable = "N/A"

// pesoGrouping renders integers with "." thousands separators and no decimals.
const pesoGrouping = "#.###,"

// ParseDigits keeps only the ASCII digits of a free-text amount and parses
// them as an integer. Empty or unparseable input yields 0. Sorting, cellar
// value and export all go through this function.
func ParseDigits(value string) int64 {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseNumber converts a vintage or count to a number, treating anything
// non-numeric (including "N/V", "NaN" and "inf") as 0.
func ParseNumber(value string) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// FormatAmount renders an amount of Chilean pesos, e.g. 17000 -> "$17.000".
func FormatAmount(amount int64) string {
	if amount < 0 {
		return "-$" + humanize.FormatInteger(pesoGrouping, int(-amount))
	}
	return "$" + humanize.FormatInteger(pesoGrouping, int(amount))
}

// FormatPrice renders a loosely typed price for display. Strings such as
// "CLP $17.000" and numbers such as 17000 produce the same output. Missing,
// blank and "n/a" values produce NotApplicable; text without any digits is
// returned trimmed.
func FormatPrice(value any) string {
	var raw string
	switch v := value.(type) {
	case nil:
		return NotApplicable
	case string:
		raw = v
	case *string:
		if v == nil {
			return NotApplicable
		}
		raw = *v
	case fmt.Stringer:
		raw = v.String()
	default:
		raw = fmt.Sprint(v)
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, NotApplicable) {
		return NotApplicable
	}

	if !strings.ContainsAny(trimmed, "0123456789") {
		return trimmed
	}
	return FormatAmount(ParseDigits(trimmed))
}
