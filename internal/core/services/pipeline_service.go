package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	portssvc "github.com/SscSPs/ecb_rates_pipeline/internal/core/ports/services"
	"github.com/SscSPs/ecb_rates_pipeline/internal/runlog"
	"github.com/SscSPs/ecb_rates_pipeline/pkg/metrics"
)

// pipelineService runs fetch, store and convert in that order.
type pipelineService struct {
	BaseService
	rates      portssvc.ExchangeRateWriterSvc
	conversion portssvc.ConversionSvc
	metrics    *metrics.PipelineMetrics
	now        func() time.Time
}

// NewPipelineService creates the pipeline. m may be nil.
func NewPipelineService(rates portssvc.ExchangeRateWriterSvc, conversion portssvc.ConversionSvc, m *metrics.PipelineMetrics) portssvc.PipelineSvc {
	return &pipelineService{
		rates:      rates,
		conversion: conversion,
		metrics:    m,
		now:        time.Now,
	}
}

// Run executes one pipeline pass. A fetch or store failure stops the run before
// conversion. Orders that could not be converted do not stop the pass; they are
// returned together as the error once every order was processed.
func (s *pipelineService) Run(ctx context.Context) (*domain.PipelineResult, error) {
	runID, ok := runlog.RunIDFromContext(ctx)
	if !ok {
		ctx, runID = runlog.Start(ctx, s.GetLogger(ctx))
	}
	result := &domain.PipelineResult{RunID: runID, StartedAt: s.now()}

	outcome, err := s.run(ctx, result)
	result.FinishedAt = s.now()
	s.observe(result, outcome)

	if err != nil {
		s.LogError(ctx, err, "Pipeline run failed", slog.Duration("duration", result.Duration()))
		return result, err
	}
	s.LogInfo(ctx, "Pipeline run completed",
		slog.Int("rates_stored", result.RatesStored),
		slog.Int("orders_converted", result.Conversion.Converted),
		slog.Duration("duration", result.Duration()),
	)
	return result, nil
}

func (s *pipelineService) run(ctx context.Context, result *domain.PipelineResult) (string, error) {
	s.LogInfo(ctx, "Refreshing reference rates")
	set, stored, err := s.rates.RefreshRates(ctx)
	if set != nil {
		result.ReferenceDate = set.ReferenceDate
	}
	result.RatesStored = stored
	if err != nil {
		return metrics.OutcomeFailed, err
	}

	s.LogInfo(ctx, "Converting orders to EUR")
	report, err := s.conversion.ConvertOrders(ctx)
	result.Conversion = report
	if err != nil {
		return metrics.OutcomeFailed, err
	}

	if convErr := report.Err(); convErr != nil {
		return metrics.OutcomePartial, fmt.Errorf("%d of %d orders not converted: %w", len(report.Failures), report.Selected, convErr)
	}
	return metrics.OutcomeSuccess, nil
}

func (s *pipelineService) observe(result *domain.PipelineResult, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RatesStored.Set(float64(result.RatesStored))
	s.metrics.OrdersConverted.Add(float64(result.Conversion.Converted))
	s.metrics.OrdersFailed.Add(float64(len(result.Conversion.Failures)))
	s.metrics.ObserveRun(outcome, result.Duration(), result.FinishedAt)
}
