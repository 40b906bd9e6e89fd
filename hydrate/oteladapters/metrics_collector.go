package oteladapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/entityevent/hydrate-go/hydrate"
)

// MetricsCollector implements hydrate.MetricsCollector on the OpenTelemetry
// metrics API. Durations map to histograms, counts to counters and values to
// gauges. Instruments are created on first use and cached.
//
// Not safe for concurrent use during instrument creation; create the
// collector and record each metric once during warmup if that matters.
type MetricsCollector struct {
	meter      metric.Meter
	histograms map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	gauges     map[string]metric.Float64Gauge
}

// NewMetricsCollector creates a collector on the given meter, which should
// come from your OpenTelemetry MeterProvider.
func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

// RecordDuration records a duration into a histogram, in seconds per
// OpenTelemetry convention.
func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	histogram := m.getOrCreateHistogram(metricName)
	if histogram == nil {
		return
	}

	histogram.Record(context.TODO(), duration.Seconds(), metric.WithAttributes(toAttributes(labels)...))
}

// IncrementCounter increments a monotonic counter.
func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	counter := m.getOrCreateCounter(metricName)
	if counter == nil {
		return
	}

	counter.Add(context.TODO(), 1, metric.WithAttributes(toAttributes(labels)...))
}

// RecordValue records a current value into a gauge.
func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	gauge := m.getOrCreateGauge(metricName)
	if gauge == nil {
		return
	}

	gauge.Record(context.TODO(), value, metric.WithAttributes(toAttributes(labels)...))
}

func toAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}

func (m *MetricsCollector) getOrCreateHistogram(name string) metric.Float64Histogram {
	if histogram, exists := m.histograms[name]; exists {
		return histogram
	}

	histogram, err := m.meter.Float64Histogram(
		name,
		metric.WithDescription("Context hydration duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil
	}

	m.histograms[name] = histogram

	return histogram
}

func (m *MetricsCollector) getOrCreateCounter(name string) metric.Int64Counter {
	if counter, exists := m.counters[name]; exists {
		return counter
	}

	counter, err := m.meter.Int64Counter(
		name,
		metric.WithDescription("Context hydration counter"),
	)
	if err != nil {
		return nil
	}

	m.counters[name] = counter

	return counter
}

func (m *MetricsCollector) getOrCreateGauge(name string) metric.Float64Gauge {
	if gauge, exists := m.gauges[name]; exists {
		return gauge
	}

	gauge, err := m.meter.Float64Gauge(
		name,
		metric.WithDescription("Context hydration current value"),
	)
	if err != nil {
		return nil
	}

	m.gauges[name] = gauge

	return gauge
}

var _ hydrate.MetricsCollector = (*MetricsCollector)(nil)
