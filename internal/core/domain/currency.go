package domain

import (
	"strings"

	"github.com/SscSPs/ecb_rates_pipeline/internal/apperrors"
	"golang.org/x/text/currency"
)

// BaseCurrency is the currency every ECB reference rate is quoted against.
const BaseCurrency = "EUR"

// NormalizeCurrencyCode trims and upper-cases a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCurrencyCode checks that code is a normalized, recognized ISO 4217 code.
func ValidateCurrencyCode(code string) error {
	if len(code) != 3 {
		return apperrors.NewValidationError("currency code '" + code + "' must be 3 letters")
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return apperrors.NewValidationError("currency code '" + code + "' must be upper-case letters")
		}
	}
	if _, err := currency.ParseISO(code); err != nil {
		return apperrors.NewValidationError("currency code '" + code + "' is not a recognized ISO 4217 code")
	}
	return nil
}

// IsBaseCurrency reports whether code denotes EUR.
func IsBaseCurrency(code string) bool {
	return NormalizeCurrencyCode(code) == BaseCurrency
}
