package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of fractional digits shown for token amounts
const DisplayPlaces = 6

// MaxDecimals bounds token decimals and the exponent of any parsed amount. uint256 holds
// at most 78 digits.
const MaxDecimals = 77

// ParseAmount parses a human-entered token amount. It rejects empty input, anything that
// is not a finite decimal number and exponents beyond ±MaxDecimals; sign checks are left
// to the caller.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if exp := d.Exponent(); exp > MaxDecimals || exp < -MaxDecimals {
		return decimal.Zero, fmt.Errorf("amount %q is out of range", s)
	}
	return d, nil
}

// ToSmallestUnit converts a human amount to the token's integer base unit. Amounts with
// more fractional digits than the token has decimals are rejected.
func ToSmallestUnit(amount decimal.Decimal, decimals int) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("invalid token decimals: %d", decimals)
	}
	if exp := amount.Exponent(); exp > MaxDecimals || exp < -MaxDecimals {
		return nil, fmt.Errorf("amount is out of range")
	}
	shifted := amount.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("amount has more than %d decimal places", decimals)
	}
	return shifted.BigInt(), nil
}

// FromSmallestUnit converts an integer base-unit amount, as returned by the backend, into
// human units
func FromSmallestUnit(raw string, decimals int) (decimal.Decimal, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return decimal.Zero, fmt.Errorf("invalid token decimals: %d", decimals)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid base unit amount %q: %w", raw, err)
	}
	if exp := d.Exponent(); exp > MaxDecimals || exp < -MaxDecimals {
		return decimal.Zero, fmt.Errorf("base unit amount %q is out of range", raw)
	}
	return d.Shift(-int32(decimals)), nil
}

// FormatAmount renders an amount for display
func FormatAmount(d decimal.Decimal) string {
	return d.Truncate(DisplayPlaces).String()
}
