package telemetry

import (
	"context"

	"go.trai.ch/bake/internal/core/ports"
)

// NoOpTracer is a no-op implementation of ports.Tracer.
type NoOpTracer struct{}

// NewNoOpTracer creates a new NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

// Start creates a new no-op span.
func (t *NoOpTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, &NoOpSpan{}
}

// NoOpSpan is a no-op implementation of ports.Span.
type NoOpSpan struct{}

// End does nothing.
func (s *NoOpSpan) End() {}

// RecordError does nothing.
func (s *NoOpSpan) RecordError(_ error) {}

// SetAttribute does nothing.
func (s *NoOpSpan) SetAttribute(_ string, _ any) {}

// Write does nothing and returns the length of p.
func (s *NoOpSpan) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// NoOpMetrics is a no-op implementation of ports.Metrics.
type NoOpMetrics struct{}

// CacheHit does nothing.
func (NoOpMetrics) CacheHit(context.Context, string) {}

// CacheMiss does nothing.
func (NoOpMetrics) CacheMiss(context.Context, string) {}

// BuilderFinished does nothing.
func (NoOpMetrics) BuilderFinished(context.Context, string, string) {}
