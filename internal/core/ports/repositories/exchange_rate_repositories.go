package repositories

import (
	"context"

	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindExchangeRate retrieves the stored rate of a currency.
	FindExchangeRate(ctx context.Context, currencyCode string) (*domain.ExchangeRate, error)

	// ListExchangeRates retrieves every stored rate.
	ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// EnsureSchema creates the rate table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// UpsertExchangeRates inserts or overwrites one row per currency code.
	// With atomic set, either every row is written or none is.
	UpsertExchangeRates(ctx context.Context, rates []domain.ExchangeRate, atomic bool) error
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
