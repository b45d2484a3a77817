package services

import (
	"context"

	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
)

// ServiceContainer holds instances of all the application services.
type ServiceContainer struct {
	ExchangeRate ExchangeRateSvcFacade
	Conversion   ConversionSvc
	Pipeline     PipelineSvc
}

// PipelineSvc runs fetch, store and convert once.
type PipelineSvc interface {
	Run(ctx context.Context) (*domain.PipelineResult, error)
}
