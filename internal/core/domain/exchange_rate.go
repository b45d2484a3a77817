package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Column limits of the rate table: DECIMAL(10,4).
const (
	RatePrecision = 10
	RateScale     = 4
)

// AmountScale is the number of fractional digits of converted amounts.
const AmountScale = 2

var maxRateExclusive = decimal.New(1, RatePrecision-RateScale)

// ExchangeRate is one row of the rate table: the EUR reference rate of a currency.
type ExchangeRate struct {
	CurrencyCode string          `json:"currencyCode"` // Primary Key
	Rate         decimal.Decimal `json:"rate"`         // 1 EUR = Rate units of CurrencyCode
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// RateSet is the validated content of one feed document.
type RateSet struct {
	ReferenceDate time.Time
	Rates         map[string]decimal.Decimal
}

// ToExchangeRates flattens the set into rows stamped with updatedAt, ordered by currency code.
func (s RateSet) ToExchangeRates(updatedAt time.Time) []ExchangeRate {
	rates := make([]ExchangeRate, 0, len(s.Rates))
	for _, code := range s.Codes() {
		rates = append(rates, ExchangeRate{
			CurrencyCode: code,
			Rate:         s.Rates[code],
			UpdatedAt:    updatedAt,
		})
	}
	return rates
}

// Codes returns the currency codes of the set in ascending order.
func (s RateSet) Codes() []string {
	codes := make([]string, 0, len(s.Rates))
	for code := range s.Rates {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// FitsRateColumn reports whether rate, rounded to RateScale, fits DECIMAL(10,4).
func FitsRateColumn(rate decimal.Decimal) bool {
	return rate.Round(RateScale).Abs().LessThan(maxRateExclusive)
}
