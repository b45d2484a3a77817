package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ecb_rates_pipeline/internal/apperrors"
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/ecb_rates_pipeline/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ecb_rates_pipeline/internal/core/ports/services"
)

// exchangeRateService fetches reference rates and keeps the rate table current.
type exchangeRateService struct {
	BaseService
	fetcher     portssvc.RateFetcher
	rateRepo    portsrepo.ExchangeRateRepositoryFacade
	atomicBatch bool
	migrate     func(ctx context.Context) error
	now         func() time.Time
}

// ExchangeRateOption is a functional option for configuring the exchange rate service
type ExchangeRateOption func(*exchangeRateService)

// WithAtomicBatch makes the store phase all-or-nothing.
func WithAtomicBatch(atomic bool) ExchangeRateOption {
	return func(s *exchangeRateService) {
		s.atomicBatch = atomic
	}
}

// WithSchemaMigrator runs migrate after a successful fetch and before the rate
// table is touched.
func WithSchemaMigrator(migrate func(ctx context.Context) error) ExchangeRateOption {
	return func(s *exchangeRateService) {
		s.migrate = migrate
	}
}

// WithClock overrides the source of updated_at timestamps.
func WithClock(now func() time.Time) ExchangeRateOption {
	return func(s *exchangeRateService) {
		s.now = now
	}
}

// NewExchangeRateService creates a new exchange rate service. Batches are atomic unless
// WithAtomicBatch(false) is given.
func NewExchangeRateService(fetcher portssvc.RateFetcher, rateRepo portsrepo.ExchangeRateRepositoryFacade, options ...ExchangeRateOption) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{
		fetcher:     fetcher,
		rateRepo:    rateRepo,
		atomicBatch: true,
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// RefreshRates fetches the feed and upserts every rate. Nothing is written, not
// even schema changes, when the fetch or parse step fails.
func (s *exchangeRateService) RefreshRates(ctx context.Context) (*domain.RateSet, int, error) {
	set, err := s.fetcher.FetchLatest(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch reference rates")
		return nil, 0, fmt.Errorf("failed to fetch reference rates: %w", err)
	}

	if s.migrate != nil {
		if err := s.migrate(ctx); err != nil {
			s.LogError(ctx, err, "Failed to apply migrations")
			return set, 0, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	if err := s.rateRepo.EnsureSchema(ctx); err != nil {
		s.LogError(ctx, err, "Failed to ensure rate table")
		return set, 0, fmt.Errorf("failed to ensure rate table: %w", err)
	}

	rates := set.ToExchangeRates(s.now().UTC().Truncate(time.Microsecond))
	if err := s.rateRepo.UpsertExchangeRates(ctx, rates, s.atomicBatch); err != nil {
		s.LogError(ctx, err, "Failed to store reference rates", slog.Bool("atomic", s.atomicBatch))
		return set, 0, fmt.Errorf("failed to store reference rates: %w", err)
	}

	s.LogInfo(ctx, "Stored reference rates",
		slog.Int("count", len(rates)),
		slog.String("reference_date", set.ReferenceDate.Format(time.DateOnly)),
		slog.Bool("atomic", s.atomicBatch),
	)
	return set, len(rates), nil
}

// GetExchangeRate retrieves the stored rate of a currency. EUR always resolves to 1.
func (s *exchangeRateService) GetExchangeRate(ctx context.Context, currencyCode string) (*domain.ExchangeRate, error) {
	code := domain.NormalizeCurrencyCode(currencyCode)
	if err := domain.ValidateCurrencyCode(code); err != nil {
		return nil, err
	}
	if domain.IsBaseCurrency(code) {
		return &domain.ExchangeRate{CurrencyCode: code, Rate: oneRate(), UpdatedAt: s.now().UTC()}, nil
	}

	rate, err := s.rateRepo.FindExchangeRate(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate in service: %w", err)
	}
	if rate == nil {
		return nil, fmt.Errorf("%w: exchange rate for %s", apperrors.ErrNotFound, code)
	}
	return rate, nil
}
