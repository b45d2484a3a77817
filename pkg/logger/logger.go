package logger

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New builds a slog.Logger backed by zap. The returned func flushes buffered
// entries and should be deferred by the caller.
func New(isProd bool, level string) (*slog.Logger, func() error) {
	var cfg zap.Config
	if isProd {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	zapLogger := zap.Must(cfg.Build())
	return slog.New(zapslog.NewHandler(zapLogger.Core())), zapLogger.Sync
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
