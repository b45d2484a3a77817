package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ecb_rates_pipeline/internal/apperrors"
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/ecb_rates_pipeline/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ecb_rates_pipeline/internal/core/ports/services"
	"github.com/SscSPs/ecb_rates_pipeline/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

func oneRate() decimal.Decimal {
	return decimal.NewFromInt(1)
}

// conversionService fills converted_amount_eur from the stored rates.
type conversionService struct {
	BaseService
	rateRepo     portsrepo.ExchangeRateReader
	orderRepo    portsrepo.OrderRepositoryFacade
	reprocessAll bool
}

// ConversionOption is a functional option for configuring the conversion service
type ConversionOption func(*conversionService)

// WithReprocessAll makes every run recompute all orders instead of filling NULLs only.
func WithReprocessAll(reprocessAll bool) ConversionOption {
	return func(s *conversionService) {
		s.reprocessAll = reprocessAll
	}
}

// NewConversionService creates a new conversion service.
func NewConversionService(rateRepo portsrepo.ExchangeRateReader, orderRepo portsrepo.OrderRepositoryFacade, options ...ConversionOption) portssvc.ConversionSvc {
	svc := &conversionService{
		rateRepo:  rateRepo,
		orderRepo: orderRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// ConvertOrders converts every selected order it has a rate for. Orders without
// a rate are reported in the returned report and left unchanged; the returned
// error is reserved for failures that stop the pass.
func (s *conversionService) ConvertOrders(ctx context.Context) (domain.ConversionReport, error) {
	var report domain.ConversionReport

	if err := s.orderRepo.EnsureConvertedColumn(ctx); err != nil {
		s.LogError(ctx, err, "Failed to prepare orders table")
		return report, fmt.Errorf("failed to prepare orders table: %w", err)
	}

	rates, err := s.loadRates(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load exchange rates")
		return report, err
	}

	orders, err := s.orderRepo.FindOrdersForConversion(ctx, s.reprocessAll)
	if err != nil {
		s.LogError(ctx, err, "Failed to select orders")
		return report, fmt.Errorf("failed to select orders for conversion: %w", err)
	}
	report.Selected = len(orders)
	s.reportNullAmounts(ctx, &report)

	for _, order := range orders {
		rate, ok := lookupRate(rates, order.CurrencyCode)
		if !ok {
			s.fail(ctx, &report, order, &apperrors.MissingRateError{OrderID: order.OrderID, CurrencyCode: order.CurrencyCode})
			continue
		}

		amountEUR, err := accounting.ConvertToEUR(order.NetAmount(), rate)
		if err != nil {
			s.fail(ctx, &report, order, fmt.Errorf("order %s: %w", order.OrderID, err))
			continue
		}

		updated, err := s.orderRepo.UpdateConvertedAmount(ctx, order.OrderID, amountEUR, !s.reprocessAll)
		if err != nil {
			s.LogError(ctx, err, "Failed to write converted amount", slog.String("order_id", order.OrderID))
			return report, fmt.Errorf("failed to write converted amount: %w", err)
		}
		if !updated {
			report.Skipped++
			s.LogDebug(ctx, "Order already converted, skipping", slog.String("order_id", order.OrderID))
			continue
		}
		report.Converted++
	}

	s.LogInfo(ctx, "Converted orders",
		slog.Int("selected", report.Selected),
		slog.Int("converted", report.Converted),
		slog.Int("skipped", report.Skipped),
		slog.Int("null_amount", report.NullAmount),
		slog.Int("failed", len(report.Failures)),
		slog.Bool("reprocess_all", s.reprocessAll),
	)
	return report, nil
}

func (s *conversionService) loadRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	stored, err := s.rateRepo.ListExchangeRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange rates: %w", err)
	}
	rates := make(map[string]decimal.Decimal, len(stored))
	for _, r := range stored {
		rates[domain.NormalizeCurrencyCode(r.CurrencyCode)] = r.Rate
	}
	return rates, nil
}

// reportNullAmounts records orders that cannot be converted because their amount is NULL.
// A failed count is logged and does not stop the pass.
func (s *conversionService) reportNullAmounts(ctx context.Context, report *domain.ConversionReport) {
	n, err := s.orderRepo.CountOrdersWithoutAmount(ctx, s.reprocessAll)
	if err != nil {
		s.LogWarn(ctx, "Failed to count orders without amount", slog.String("error", err.Error()))
		return
	}
	report.NullAmount = n
	if n > 0 {
		s.LogWarn(ctx, "Orders without amount left unconverted", slog.Int("count", n))
	}
}

// lookupRate resolves EUR to 1 whether or not the table holds an EUR row.
func lookupRate(rates map[string]decimal.Decimal, currencyCode string) (decimal.Decimal, bool) {
	if domain.IsBaseCurrency(currencyCode) {
		return oneRate(), true
	}
	rate, ok := rates[domain.NormalizeCurrencyCode(currencyCode)]
	return rate, ok
}

func (s *conversionService) fail(ctx context.Context, report *domain.ConversionReport, order domain.Order, err error) {
	report.Failures = append(report.Failures, domain.ConversionFailure{
		OrderID:      order.OrderID,
		CurrencyCode: order.CurrencyCode,
		Err:          err,
	})
	s.LogWarn(ctx, "Order not converted",
		slog.String("order_id", order.OrderID),
		slog.String("currency", order.CurrencyCode),
		slog.String("error", err.Error()),
	)
}
