package repositories

import (
	"context"

	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OrderReader defines read operations on the orders table
type OrderReader interface {
	// FindOrdersForConversion returns orders without a converted amount, or every order when reprocessAll is set.
	FindOrdersForConversion(ctx context.Context, reprocessAll bool) ([]domain.Order, error)

	// CountOrdersWithoutAmount counts the orders skipped by FindOrdersForConversion because their amount is NULL.
	CountOrdersWithoutAmount(ctx context.Context, reprocessAll bool) (int, error)
}

// OrderWriter defines write operations on the orders table
type OrderWriter interface {
	// EnsureConvertedColumn adds converted_amount_eur to the orders table if it is missing.
	EnsureConvertedColumn(ctx context.Context) error

	// UpdateConvertedAmount sets converted_amount_eur of one order. With onlyIfNull the
	// row is left alone when another writer already filled it; updated reports whether a row changed.
	UpdateConvertedAmount(ctx context.Context, orderID string, amountEUR decimal.Decimal, onlyIfNull bool) (updated bool, err error)
}

// OrderRepositoryFacade combines all order-related repository interfaces
type OrderRepositoryFacade interface {
	OrderReader
	OrderWriter
}
