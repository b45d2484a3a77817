package accounting

import (
	"github.com/SscSPs/ecb_rates_pipeline/internal/apperrors"
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
)

// divisionPrecision bounds the intermediate quotient before rounding.
const divisionPrecision = 16

// ConvertToEUR converts an amount quoted in a foreign currency into EUR.
// ECB reference rates read "1 EUR = rate units of currency", so the foreign
// amount is divided by the rate. The result is rounded half away from zero
// to domain.AmountScale digits.
func ConvertToEUR(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperrors.NewValidationError("exchange rate must be positive, got " + rate.String())
	}
	return RoundAmount(amount.DivRound(rate, divisionPrecision)), nil
}

// RoundAmount rounds an EUR amount to domain.AmountScale digits.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(domain.AmountScale)
}
