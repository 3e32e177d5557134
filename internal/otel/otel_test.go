package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/talkline/roomsession/internal/errors"
	"github.com/talkline/roomsession/internal/log"
)

func TestFactoryPrefixesNames(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	var joins metric.Int64Counter
	var active metric.Int64UpDownCounter
	f := NewFactory("test", PrefixCoordinator)
	f.Int64Counter(&joins, "joins.started")
	f.Int64UpDownCounter(&active, "rooms.active")

	joins.Add(context.Background(), 2)
	active.Add(context.Background(), 1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
	}
	assert.True(t, names["roomsession.coordinator.joins.started"])
	assert.True(t, names["roomsession.coordinator.rooms.active"])
}

func TestFactoryWithoutPrefix(t *testing.T) {
	f := NewFactory("test", "")
	assert.Equal(t, "joins", f.name("joins"))
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	_, span := StartSpan(context.Background(), tracer, "ocs.join", TokenAttr("room42"))
	RecordError(span, errors.PureNew("boom"))
	span.End()

	_, ok := StartSpan(context.Background(), tracer, "ocs.exit")
	RecordError(ok, nil)
	ok.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "Error", spans[0].Status().Code.String())
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "Unset", spans[1].Status().Code.String())
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), &Config{ServiceName: "roomsession"}, log.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
}
