package mapping

import (
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	"github.com/SscSPs/ecb_rates_pipeline/internal/models"
)

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate,
// rounding the rate to the column scale and the timestamp to UTC.
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		CurrencyCode: domain.NormalizeCurrencyCode(d.CurrencyCode),
		Rate:         d.Rate.Round(domain.RateScale),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		CurrencyCode: m.CurrencyCode,
		Rate:         m.Rate,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ToDomainExchangeRates converts a slice of model rates.
func ToDomainExchangeRates(ms []models.ExchangeRate) []domain.ExchangeRate {
	rates := make([]domain.ExchangeRate, len(ms))
	for i, m := range ms {
		rates[i] = ToDomainExchangeRate(m)
	}
	return rates
}
