package services

import (
	"context"

	portsrepo "github.com/SscSPs/ecb_rates_pipeline/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ecb_rates_pipeline/internal/core/ports/services"
	"github.com/SscSPs/ecb_rates_pipeline/pkg/config"
	"github.com/SscSPs/ecb_rates_pipeline/pkg/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// migrate may be nil when no migrations should run.
func NewServiceContainer(cfg *config.Config, fetcher portssvc.RateFetcher, repos portsrepo.RepositoryProvider, migrate func(ctx context.Context) error, m *metrics.PipelineMetrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	rateOptions := []ExchangeRateOption{WithAtomicBatch(cfg.Store.AtomicBatch)}
	if migrate != nil {
		rateOptions = append(rateOptions, WithSchemaMigrator(migrate))
	}
	container.ExchangeRate = NewExchangeRateService(fetcher, repos.ExchangeRateRepo, rateOptions...)
	container.Conversion = NewConversionService(
		repos.ExchangeRateRepo,
		repos.OrderRepo,
		WithReprocessAll(cfg.Orders.ReprocessAll),
	)
	container.Pipeline = NewPipelineService(container.ExchangeRate, container.Conversion, m)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)
	_ portssvc.ConversionSvc         = (*conversionService)(nil)
	_ portssvc.PipelineSvc           = (*pipelineService)(nil)
)
