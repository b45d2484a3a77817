package runlog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey prevents collisions with keys set by other packages.
type contextKey string

const (
	loggerKey = contextKey("logger")
	runIDKey  = contextKey("run_id")
)

// Start tags a pipeline run with a fresh ID and stores a logger enriched with
// it in the returned context.
func Start(ctx context.Context, baseLogger *slog.Logger) (context.Context, string) {
	runID := uuid.NewString()
	runLogger := baseLogger.With(slog.String("run_id", runID))

	ctx = context.WithValue(ctx, runIDKey, runID)
	ctx = context.WithValue(ctx, loggerKey, runLogger)
	return ctx, runID
}

// LoggerFromContext returns the run-scoped logger, or slog.Default when none is set.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// RunIDFromContext returns the run ID stored by Start.
func RunIDFromContext(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(runIDKey).(string)
	return runID, ok
}
