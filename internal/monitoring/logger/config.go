package logger

import (
	"go.uber.org/zap/zapcore"
)

const (
	defaultEncoding = "console"
	defaultLevel    = zapcore.InfoLevel
)

// Config represents the logger configuration.
type Config struct {
	// Encoding is the log encoding.
	// Possible values: json, console.
	Encoding string `yaml:"encoding" toml:"encoding"`
	// Level is the log level.
	Level zapcore.Level `yaml:"level" toml:"level"`
	// OTEL is the OTEL exporter configuration.
	OTEL *OTELConfig `yaml:"otel_exporter" toml:"otel_exporter"`
}

// DefaultConfig returns the configuration used when none is provided:
// human-readable lines at info level.
func DefaultConfig() *Config {
	return &Config{
		Encoding: defaultEncoding,
		Level:    defaultLevel,
	}
}

// GetEncoding returns the log encoding, falling back to the default one.
func (m *Config) GetEncoding() string {
	if m == nil || m.Encoding == "" {
		return defaultEncoding
	}
	return m.Encoding
}
