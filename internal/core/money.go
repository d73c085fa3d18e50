// Package core provides money parsing and formatting utilities.
//
// Amounts are carried as float64 dollars throughout the analytic core;
// rounding to whole cents or dollars happens only at presentation boundaries.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a decimal string to a float64 amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Returns ErrInvalidAmount for empty, malformed or
// non-finite input.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-50")   -> -50, nil
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(x float64) float64 {
	return math.Round(x*100) / 100
}

// FormatDollars formats an amount for display, e.g. "$1,234.50" or "-$12.00".
func FormatDollars(x float64) string {
	cents := int64(math.Round(x * 100))
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	// thousands separators
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	s := "$" + b.String() + "." + frac
	if neg {
		return "-" + s
	}
	return s
}
