package pgsql

import (
	portsrepo "github.com/SscSPs/ecb_rates_pipeline/internal/core/ports/repositories"
	"github.com/SscSPs/ecb_rates_pipeline/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool, cfg *config.Config) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExchangeRateRepo: NewPgxExchangeRateRepository(dbPool, cfg.Store.RatesTable),
		OrderRepo:        NewPgxOrderRepository(dbPool, cfg.Orders),
	}
}
