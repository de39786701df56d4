package accounts

import "github.com/shopspring/decimal"

// ValidateAmount accepts only strictly positive amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return newError(CodeInvalidAmount, "amount must be greater than zero, got %s", amount.String())
	}
	return nil
}
