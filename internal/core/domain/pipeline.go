package domain

import "time"

// PipelineResult describes a completed (or partially completed) pipeline run.
type PipelineResult struct {
	RunID         string
	ReferenceDate time.Time
	RatesStored   int
	Conversion    ConversionReport
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration of the run.
func (r PipelineResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
