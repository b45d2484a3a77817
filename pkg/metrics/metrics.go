package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "ecb_pipeline"

// PipelineMetrics holds the collectors of one process. They live on a private
// registry so that a batch run can push exactly what it measured.
type PipelineMetrics struct {
	Registry *prometheus.Registry

	RatesStored     prometheus.Gauge
	OrdersConverted prometheus.Counter
	OrdersFailed    prometheus.Counter
	RunDuration     prometheus.Histogram
	LastSuccess     prometheus.Gauge
	RunsTotal       *prometheus.CounterVec
}

// NewPipelineMetrics creates and registers the pipeline collectors.
func NewPipelineMetrics() *PipelineMetrics {
	m := &PipelineMetrics{
		Registry: prometheus.NewRegistry(),
		RatesStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rates_stored",
			Help:      "Number of exchange rates upserted by the last run.",
		}),
		OrdersConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_converted_total",
			Help:      "Orders whose converted_amount_eur was written.",
		}),
		OrdersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_failed_total",
			Help:      "Orders that could not be converted.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that completed without errors.",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
	}

	m.Registry.MustRegister(
		m.RatesStored,
		m.OrdersConverted,
		m.OrdersFailed,
		m.RunDuration,
		m.LastSuccess,
		m.RunsTotal,
	)
	return m
}

// ObserveRun records the outcome of a finished run.
func (m *PipelineMetrics) ObserveRun(outcome string, duration time.Duration, finishedAt time.Time) {
	m.RunDuration.Observe(duration.Seconds())
	m.RunsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.LastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// Run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// Push sends the registry to a Prometheus Pushgateway under the given job name.
func (m *PipelineMetrics) Push(ctx context.Context, gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
