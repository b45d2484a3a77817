package services_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/ecb_rates_pipeline/internal/apperrors"
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock RateFetcher ---
type MockRateFetcher struct {
	mock.Mock
}

func (m *MockRateFetcher) FetchLatest(ctx context.Context) (*domain.RateSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateSet), args.Error(1)
}

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindExchangeRate(ctx context.Context, currencyCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) UpsertExchangeRates(ctx context.Context, rates []domain.ExchangeRate, atomic bool) error {
	args := m.Called(ctx, rates, atomic)
	return args.Error(0)
}

// --- Mock OrderRepository ---
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindOrdersForConversion(ctx context.Context, reprocessAll bool) ([]domain.Order, error) {
	args := m.Called(ctx, reprocessAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) CountOrdersWithoutAmount(ctx context.Context, reprocessAll bool) (int, error) {
	args := m.Called(ctx, reprocessAll)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) EnsureConvertedColumn(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateConvertedAmount(ctx context.Context, orderID string, amountEUR decimal.Decimal, onlyIfNull bool) (bool, error) {
	args := m.Called(ctx, orderID, amountEUR, onlyIfNull)
	return args.Bool(0), args.Error(1)
}

// memRateRepo keeps rates keyed by currency code, like the real table.
type memRateRepo struct {
	mu      sync.Mutex
	rows    map[string]domain.ExchangeRate
	upserts int
}

func newMemRateRepo() *memRateRepo {
	return &memRateRepo{rows: map[string]domain.ExchangeRate{}}
}

func (r *memRateRepo) EnsureSchema(context.Context) error { return nil }

func (r *memRateRepo) UpsertExchangeRates(_ context.Context, rates []domain.ExchangeRate, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rate := range rates {
		r.rows[rate.CurrencyCode] = rate
		r.upserts++
	}
	return nil
}

func (r *memRateRepo) FindExchangeRate(_ context.Context, currencyCode string) (*domain.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate, ok := r.rows[domain.NormalizeCurrencyCode(currencyCode)]
	if !ok {
		return nil, fmt.Errorf("%w: exchange rate for %s", apperrors.ErrNotFound, currencyCode)
	}
	return &rate, nil
}

func (r *memRateRepo) ListExchangeRates(context.Context) ([]domain.ExchangeRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rates := make([]domain.ExchangeRate, 0, len(r.rows))
	for _, rate := range r.rows {
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].CurrencyCode < rates[j].CurrencyCode })
	return rates, nil
}

// memOrderRepo mimics the fill-NULLs update of the orders table.
type memOrderRepo struct {
	mu         sync.Mutex
	orders     []domain.Order
	nullAmount int
}

func (r *memOrderRepo) EnsureConvertedColumn(context.Context) error { return nil }

func (r *memOrderRepo) FindOrdersForConversion(_ context.Context, reprocessAll bool) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var selected []domain.Order
	for _, o := range r.orders {
		if reprocessAll || o.ConvertedAmountEUR == nil {
			selected = append(selected, o)
		}
	}
	return selected, nil
}

func (r *memOrderRepo) CountOrdersWithoutAmount(context.Context, bool) (int, error) {
	return r.nullAmount, nil
}

func (r *memOrderRepo) UpdateConvertedAmount(_ context.Context, orderID string, amountEUR decimal.Decimal, onlyIfNull bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].OrderID != orderID {
			continue
		}
		if onlyIfNull && r.orders[i].ConvertedAmountEUR != nil {
			return false, nil
		}
		amount := amountEUR
		r.orders[i].ConvertedAmountEUR = &amount
		return true, nil
	}
	return false, nil
}

func (r *memOrderRepo) converted(orderID string) *decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderID == orderID {
			return o.ConvertedAmountEUR
		}
	}
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rateSet(date string, rates map[string]string) *domain.RateSet {
	ref, err := time.Parse(time.DateOnly, date)
	if err != nil {
		panic(err)
	}
	set := &domain.RateSet{ReferenceDate: ref, Rates: map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}}
	for code, rate := range rates {
		set.Rates[code] = dec(rate)
	}
	return set
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
