package quote

import (
	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/utils"
	"github.com/shopspring/decimal"
)

// ValidateAmount checks an entered amount against the available balance. It runs on every
// keystroke, independent of any quote request.
func ValidateAmount(input string, balance decimal.Decimal) (decimal.Decimal, error) {
	amount, err := utils.ParseAmount(input)
	if err != nil {
		return decimal.Zero, errs.Validation("amount", "Please enter a valid amount")
	}
	if !amount.IsPositive() {
		return decimal.Zero, errs.Validation("amount", "Amount must be greater than 0")
	}
	if amount.GreaterThan(balance) {
		return decimal.Zero, errs.Validation("amount", "Insufficient balance")
	}
	return amount, nil
}

// ParseBalance parses a formatted balance; an empty balance is zero
func ParseBalance(formatted string) (decimal.Decimal, error) {
	if formatted == "" {
		return decimal.Zero, nil
	}
	return utils.ParseAmount(formatted)
}
