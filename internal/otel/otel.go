package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	runtimeotel "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/talkline/roomsession/internal/log"
)

// ShutdownFunc flushes and stops the providers installed by Init.
type ShutdownFunc func(context.Context) error

// Init installs global tracer and meter providers. Disabled signals get
// in-process providers that never export.
func Init(ctx context.Context, config *Config, logger *log.Logger) (ShutdownFunc, error) {
	logger.Info("OTEL configuration",
		log.Bool("tracing", config.Tracing.Enabled),
		log.Bool("metrics", config.Metrics.Enabled),
		log.Bool("runtime_metrics", config.Metrics.Runtime),
		log.String("endpoint", config.Exporter.Endpoint),
		log.String("service_name", config.ServiceName))

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(config.ServiceName)),
		resource.WithFromEnv(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider()
	if config.Tracing.Enabled {
		if tracerProvider, err = newTracerProvider(ctx, &config.Exporter, config.Tracing.SamplingRate, res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		otel.SetTracerProvider(tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	meterProvider := sdkmetric.NewMeterProvider()
	if config.Metrics.Enabled {
		if meterProvider, err = newMeterProvider(ctx, &config.Exporter, config.Metrics.ExportInterval, res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
		// instruments created earlier by package init() delegate to this provider
		otel.SetMeterProvider(meterProvider)

		if config.Metrics.Runtime {
			if err := runtimeotel.Start(runtimeotel.WithMeterProvider(meterProvider)); err != nil {
				return nil, fmt.Errorf("failed to start runtime metrics: %w", err)
			}
		}
	}

	return func(ctx context.Context) error {
		return errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)
	}, nil
}

func newTracerProvider(ctx context.Context, exp *ExporterConfig, rate float64, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(exp.Endpoint),
		otlptracegrpc.WithTimeout(exp.Timeout),
	}
	if len(exp.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(exp.Headers))
	}
	if exp.Insecure {
		opts = append(opts,
			otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(rate)),
	), nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func newMeterProvider(ctx context.Context, exp *ExporterConfig, interval time.Duration, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(exp.Endpoint),
		otlpmetricgrpc.WithTimeout(exp.Timeout),
	}
	if len(exp.Headers) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(exp.Headers))
	}
	if exp.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithTLSCredentials(insecure.NewCredentials()),
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(interval),
		)),
	), nil
}
