package metrics

import (
	"context"
	"sync"

	"github.com/hilthontt/ephemera/infrastructure/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Manager registers instruments by name and records values against them.
// Labels are passed as alternating key/value pairs.
type Manager interface {
	NewCounter(name, desc string)
	NewUpDownCounter(name, desc string)
	NewHistogram(name, desc string, buckets ...float64)
	NewGauge(name, desc string)

	IncrementCounter(ctx context.Context, name string, labels ...string)
	DeltaUpDownCounter(ctx context.Context, name string, value float64, labels ...string)
	RecordHistogram(ctx context.Context, name string, value float64, labels ...string)
	SetGauge(name string, value float64, labels ...string)
}

type metricsManager struct {
	meter  metric.Meter
	logger *logger.Logger

	mu             sync.RWMutex
	counters       map[string]metric.Int64Counter
	upDownCounters map[string]metric.Float64UpDownCounter
	histograms     map[string]metric.Float64Histogram
	gauges         map[string]metric.Float64Gauge
}

func NewMetricsManager(meter metric.Meter, logger *logger.Logger) Manager {
	return &metricsManager{
		meter:          meter,
		logger:         logger,
		counters:       make(map[string]metric.Int64Counter),
		upDownCounters: make(map[string]metric.Float64UpDownCounter),
		histograms:     make(map[string]metric.Float64Histogram),
		gauges:         make(map[string]metric.Float64Gauge),
	}
}

func (m *metricsManager) NewCounter(name, desc string) {
	counter, err := m.meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		m.logger.Error("failed to create counter", zap.String("metric", name), zap.Error(err))
		return
	}

	m.mu.Lock()
	m.counters[name] = counter
	m.mu.Unlock()
}

func (m *metricsManager) NewUpDownCounter(name, desc string) {
	counter, err := m.meter.Float64UpDownCounter(name, metric.WithDescription(desc))
	if err != nil {
		m.logger.Error("failed to create up-down counter", zap.String("metric", name), zap.Error(err))
		return
	}

	m.mu.Lock()
	m.upDownCounters[name] = counter
	m.mu.Unlock()
}

func (m *metricsManager) NewHistogram(name, desc string, buckets ...float64) {
	opts := []metric.Float64HistogramOption{metric.WithDescription(desc)}
	if len(buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(buckets...))
	}

	histogram, err := m.meter.Float64Histogram(name, opts...)
	if err != nil {
		m.logger.Error("failed to create histogram", zap.String("metric", name), zap.Error(err))
		return
	}

	m.mu.Lock()
	m.histograms[name] = histogram
	m.mu.Unlock()
}

func (m *metricsManager) NewGauge(name, desc string) {
	gauge, err := m.meter.Float64Gauge(name, metric.WithDescription(desc))
	if err != nil {
		m.logger.Error("failed to create gauge", zap.String("metric", name), zap.Error(err))
		return
	}

	m.mu.Lock()
	m.gauges[name] = gauge
	m.mu.Unlock()
}

func (m *metricsManager) IncrementCounter(ctx context.Context, name string, labels ...string) {
	m.mu.RLock()
	counter, ok := m.counters[name]
	m.mu.RUnlock()

	if !ok {
		m.unknown("counter", name)
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(toAttributes(labels)...))
}

func (m *metricsManager) DeltaUpDownCounter(ctx context.Context, name string, value float64, labels ...string) {
	m.mu.RLock()
	counter, ok := m.upDownCounters[name]
	m.mu.RUnlock()

	if !ok {
		m.unknown("up-down counter", name)
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(toAttributes(labels)...))
}

func (m *metricsManager) RecordHistogram(ctx context.Context, name string, value float64, labels ...string) {
	m.mu.RLock()
	histogram, ok := m.histograms[name]
	m.mu.RUnlock()

	if !ok {
		m.unknown("histogram", name)
		return
	}
	histogram.Record(ctx, value, metric.WithAttributes(toAttributes(labels)...))
}

func (m *metricsManager) SetGauge(name string, value float64, labels ...string) {
	m.mu.RLock()
	gauge, ok := m.gauges[name]
	m.mu.RUnlock()

	if !ok {
		m.unknown("gauge", name)
		return
	}
	gauge.Record(context.Background(), value, metric.WithAttributes(toAttributes(labels)...))
}

func (m *metricsManager) unknown(kind, name string) {
	m.logger.Warn("metric not registered", zap.String("kind", kind), zap.String("metric", name))
}

// toAttributes pairs up labels; a trailing key without a value is dropped.
func toAttributes(labels []string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels)/2)
	for i := 0; i+1 < len(labels); i += 2 {
		attrs = append(attrs, attribute.String(labels[i], labels[i+1]))
	}
	return attrs
}
