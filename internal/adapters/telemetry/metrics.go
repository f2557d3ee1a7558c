package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Metric names.
const (
	MetricCacheHits       = "bake_cache_hits_total"
	MetricCacheMisses     = "bake_cache_misses_total"
	MetricBuilderFinished = "bake_builders_finished_total"
)

var metricNames = []string{MetricBuilderFinished, MetricCacheHits, MetricCacheMisses}

// Metrics is a concrete implementation of ports.Metrics using OpenTelemetry counters.
type Metrics struct {
	hits     metric.Int64Counter
	misses   metric.Int64Counter
	finished metric.Int64Counter

	reader   sdkmetric.Reader
	provider *sdkmetric.MeterProvider
}

var _ ports.Metrics = (*Metrics)(nil)

// NewMetrics registers the builder counters with mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(InstrumentationName)

	hits, err := meter.Int64Counter(
		MetricCacheHits,
		metric.WithDescription("Builders whose cached outputs were reused"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		MetricCacheMisses,
		metric.WithDescription("Builders that had to run"),
	)
	if err != nil {
		return nil, err
	}

	finished, err := meter.Int64Counter(
		MetricBuilderFinished,
		metric.WithDescription("Builders that reached a terminal status"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{hits: hits, misses: misses, finished: finished}, nil
}

// NewRecordingMetrics registers the builder counters with an SDK meter
// provider whose manual reader backs Totals. The provider is returned so it
// can also serve as the global one.
func NewRecordingMetrics() (*Metrics, *sdkmetric.MeterProvider, error) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp)
	if err != nil {
		_ = mp.Shutdown(context.Background())
		return nil, nil, err
	}
	m.reader = reader
	m.provider = mp
	return m, mp, nil
}

// Totals sums every counter over all attribute sets. Counters that were never
// incremented report zero.
func (m *Metrics) Totals(ctx context.Context) (map[string]int64, error) {
	if m.reader == nil {
		return nil, domain.ErrMetricsUnavailable
	}

	var rm metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &rm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrMetricsUnavailable.Error())
	}

	totals := make(map[string]int64, len(metricNames))
	for _, name := range metricNames {
		totals[name] = 0
	}
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[met.Name] += dp.Value
			}
		}
	}
	return totals, nil
}

// DumpTotals writes the counter totals recorded since startup to w.
func (m *Metrics) DumpTotals(ctx context.Context, w io.Writer) error {
	totals, err := m.Totals(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "builder metrics:"); err != nil {
		return err
	}
	for _, name := range metricNames {
		if _, err := fmt.Fprintf(w, "  %-30s %4d\n", name, totals[name]); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops the meter provider created by NewRecordingMetrics.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

// CacheHit records a builder whose cached outputs were reused.
func (m *Metrics) CacheHit(ctx context.Context, builderType string) {
	m.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("builder.type", builderType)))
}

// CacheMiss records a builder that had to run.
func (m *Metrics) CacheMiss(ctx context.Context, builderType string) {
	m.misses.Add(ctx, 1, metric.WithAttributes(attribute.String("builder.type", builderType)))
}

// BuilderFinished records the terminal status of a builder.
func (m *Metrics) BuilderFinished(ctx context.Context, builderType, status string) {
	m.finished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("builder.type", builderType),
		attribute.String("builder.status", status),
	))
}
