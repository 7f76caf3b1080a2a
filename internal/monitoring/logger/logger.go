// Package logger builds the zap logger shared by every component.
package logger

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanet-platform/ackdrain/internal/types/runid"
)

// Logger is the process logger together with the export pipeline feeding it.
// Shutdown must be called before the process exits, otherwise records still
// buffered for export are lost.
type Logger struct {
	*zap.Logger

	exporter shutdowner // nil when export is disabled
}

// shutdowner is implemented by the OTEL logger provider.
type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// New creates a new logger instance with the given configuration. A nil
// config is equivalent to [DefaultConfig].
func New(ctx context.Context, config *Config) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(config.Level),
		Encoding:          config.GetEncoding(),
		DisableStacktrace: true,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "name",
			CallerKey:      "caller",
			MessageKey:     "msg",
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields:    processFields(),
	}

	base, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if config.OTEL == nil {
		return &Logger{Logger: base}, nil
	}

	// Records at a level disabled for stdout are not exported either.
	otelCore, provider, err := setupOTELExporter(ctx, config.OTEL)
	if err != nil {
		return nil, fmt.Errorf("failed to setup OTEL exporter: %w", err)
	}
	otelCore, err = zapcore.NewIncreaseLevelCore(otelCore, zapConfig.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to limit OTEL exporter level: %w", err)
	}

	return &Logger{
		Logger: base.WithOptions(
			zap.WrapCore(func(core zapcore.Core) zapcore.Core {
				return zapcore.NewTee(core, otelCore)
			}),
		),
		exporter: provider,
	}, nil
}

// Shutdown flushes buffered entries and stops the export pipeline. Flushing
// stdout may fail on terminals and pipes; such errors are ignored.
func (m *Logger) Shutdown(ctx context.Context) error {
	_ = m.Logger.Sync()

	if m.exporter == nil {
		return nil
	}
	if err := m.exporter.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown OTEL exporter: %w", err)
	}
	return nil
}

// WithRun returns a child logger whose entries carry the run identifier.
func WithRun(logger *zap.Logger, id runid.RunID) *zap.Logger {
	return logger.With(zap.String("run_id", string(id)))
}

// processFields describes the emitting process. A failure to detect the
// hostname only drops the field.
func processFields() map[string]any {
	fields := map[string]any{
		"pid": os.Getpid(),
	}
	if hostname, err := os.Hostname(); err == nil {
		fields["host"] = hostname
	}
	return fields
}
