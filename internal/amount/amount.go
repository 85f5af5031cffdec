// Package amount implements the fixed-point monetary representation used by
// the ledger: an unsigned count of ten-thousandths (4 fractional digits).
//
// Values are never converted to floating point. Parsing truncates excess
// fractional digits instead of rounding, so Parse(Format(x)) == x for every
// representable x.
package amount

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// Scale is the number of amount units in one whole currency unit.
	Scale = 10_000

	// Digits is the number of fractional digits carried by an Amount.
	Digits = 4

	// MaxAmount is the largest parseable amount. It keeps every amount
	// representable as a signed balance.
	MaxAmount Amount = math.MaxInt64
)

var ErrParse = errors.New("parse amount")

// Amount is a non-negative monetary value scaled by Scale.
type Amount uint64

// Parse converts decimal text such as "12.5" or "0.0001" to an Amount.
// Fractional digits after the fourth are discarded.
func Parse(text string) (Amount, error) {
	integer, fraction, _ := strings.Cut(text, ".")

	whole, err := parseDigits(integer)
	if err != nil {
		return 0, fmt.Errorf("%w: integer part of %q: %w", ErrParse, text, err)
	}

	if whole > uint64(MaxAmount)/Scale {
		return 0, fmt.Errorf("%w: %q exceeds maximum amount", ErrParse, text)
	}

	frac, err := parseDigits(fractionDigits(fraction))
	if err != nil {
		return 0, fmt.Errorf("%w: fractional part of %q: %w", ErrParse, text, err)
	}

	total := whole*Scale + frac
	if total > uint64(MaxAmount) {
		return 0, fmt.Errorf("%w: %q exceeds maximum amount", ErrParse, text)
	}

	return Amount(total), nil
}

// fractionDigits right-pads s with zeros to Digits characters and keeps
// exactly the first Digits of them.
func fractionDigits(s string) string {
	if len(s) < Digits {
		return s + strings.Repeat("0", Digits-len(s))
	}

	return s[:Digits]
}

// parseDigits accepts only plain ASCII decimal digits; signs and blanks are
// rejected even though strconv would tolerate some of them.
func parseDigits(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("empty")
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid digit %q", s[i])
		}
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse uint: %w", err)
	}

	return v, nil
}

// Format renders a as "{integer}.{fraction}" with exactly four fraction digits.
func Format(a Amount) string {
	return fmt.Sprintf("%d.%04d", uint64(a)/Scale, uint64(a)%Scale)
}

// FormatSigned renders a signed balance. Only strictly negative values get a
// leading "-".
func FormatSigned(v int64) string {
	if v < 0 {
		// Negating through uint64 keeps math.MinInt64 exact.
		return "-" + Format(Amount(-uint64(v)))
	}

	return Format(Amount(v))
}

func (a Amount) String() string {
	return Format(a)
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(Format(a)), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}

	*a = v

	return nil
}
