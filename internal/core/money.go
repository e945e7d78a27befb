// Package core provides the shared domain model for the activity engine:
// contribution records, work records, money handling, and derived summaries.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an exact currency amount in cents. All financial arithmetic in
// the engine happens in cents so derived totals never accumulate float
// drift; convert to dollars only for display.
type Money struct {
	Cents int64 `json:"cents"`
}

// Add returns the exact sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Dollars returns the dollar value as a float64 for display purposes.
// Use cents for calculations.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount as a dollar string, e.g. "$12.34".
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Accepts dot and comma separators.
// Negative amounts are rejected; work records never carry negative value.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}
