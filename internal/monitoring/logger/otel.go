package logger

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap/zapcore"
)

const defaultServiceName = "ackdrain"

var errNoEndpoint = errors.New("otel exporter endpoint is empty")

// OTELConfig represents the OTEL exporter configuration.
type OTELConfig struct {
	// Endpoint through which the OTEL exporter will send logs.
	Endpoint string `yaml:"grpc_addr" toml:"grpc_addr"`
	// ServiceName reported with every record. Defaults to "ackdrain".
	ServiceName string `yaml:"service_name" toml:"service_name"`
}

func (m *OTELConfig) serviceName() string {
	if m.ServiceName == "" {
		return defaultServiceName
	}
	return m.ServiceName
}

// setupOTELExporter returns a zap core feeding a batching OTLP/gRPC exporter
// and the provider owning the batch. The provider has to be shut down to
// flush the batch.
func setupOTELExporter(ctx context.Context, config *OTELConfig) (zapcore.Core, *log.LoggerProvider, error) {
	if config.Endpoint == "" {
		return nil, nil, errNoEndpoint
	}

	exporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(config.Endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create otel grpc exporter: %w", err)
	}

	provider := log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(exporter)),
		log.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String(config.serviceName()),
			),
		),
	)

	otelCore := otelzap.NewCore(config.serviceName(), otelzap.WithLoggerProvider(provider))

	return otelCore, provider, nil
}
