package services

import (
	"context"

	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
)

// RateFetcher retrieves the current reference rates from the feed.
type RateFetcher interface {
	FetchLatest(ctx context.Context) (*domain.RateSet, error)
}

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// GetExchangeRate retrieves the stored EUR rate of a currency.
	GetExchangeRate(ctx context.Context, currencyCode string) (*domain.ExchangeRate, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// RefreshRates fetches the feed and upserts it into the rate table.
	// It returns the fetched set and the number of rows written.
	RefreshRates(ctx context.Context) (*domain.RateSet, int, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}

// ConversionSvc fills converted_amount_eur on orders.
type ConversionSvc interface {
	ConvertOrders(ctx context.Context) (domain.ConversionReport, error)
}
