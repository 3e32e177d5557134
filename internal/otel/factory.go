package otel

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// MetricFactory creates instruments from the global meter with a shared name
// prefix. Packages call it from init(); those instruments delegate to the
// provider that Init installs later.
type MetricFactory struct {
	meter  metric.Meter
	prefix string
}

func NewFactory(meterName, prefix string) *MetricFactory {
	return &MetricFactory{
		meter:  otel.Meter(meterName),
		prefix: prefix,
	}
}

func (f *MetricFactory) name(suffix string) string {
	if f.prefix == "" {
		return suffix
	}
	return f.prefix + "." + suffix
}

// must panics on instrument errors, which only come from invalid names.
func must[T any](kind, name string, inst T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("failed to create %s %s: %v", kind, name, err))
	}
	return inst
}

func (f *MetricFactory) Int64Counter(target *metric.Int64Counter, name string, options ...metric.Int64CounterOption) {
	full := f.name(name)
	c, err := f.meter.Int64Counter(full, options...)
	*target = must("counter", full, c, err)
}

func (f *MetricFactory) Int64UpDownCounter(target *metric.Int64UpDownCounter, name string, options ...metric.Int64UpDownCounterOption) {
	full := f.name(name)
	c, err := f.meter.Int64UpDownCounter(full, options...)
	*target = must("up-down counter", full, c, err)
}

// Float64Histogram defaults to seconds with latency-sized buckets when no
// options are given.
func (f *MetricFactory) Float64Histogram(target *metric.Float64Histogram, name string, options ...metric.Float64HistogramOption) {
	if len(options) == 0 {
		options = []metric.Float64HistogramOption{
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
		}
	}
	full := f.name(name)
	h, err := f.meter.Float64Histogram(full, options...)
	*target = must("histogram", full, h, err)
}
