package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/bake/internal/core/ports"
)

// Span attribute keys set by the scheduler.
const (
	AttrCached = "bake.cached"
	AttrUID    = "bake.uid"
)

// LogBridge implements sdktrace.SpanProcessor and reports builder spans
// through the logger.
type LogBridge struct {
	logger ports.Logger
}

var _ sdktrace.SpanProcessor = (*LogBridge)(nil)

// NewLogBridge returns a new LogBridge.
func NewLogBridge(logger ports.Logger) *LogBridge {
	return &LogBridge{logger: logger}
}

// OnStart is called when a span starts.
func (b *LogBridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if !s.SpanContext().IsValid() {
		return
	}
	b.logger.Debug("started", "builder", s.Name())
}

// OnEnd is called when a span ends.
func (b *LogBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if !s.SpanContext().IsValid() {
		return
	}

	args := []any{"builder", s.Name(), "duration", s.EndTime().Sub(s.StartTime()).Round(time.Millisecond)}
	for _, kv := range s.Attributes() {
		if string(kv.Key) == AttrCached && kv.Value.AsBool() {
			args = append(args, "cached", true)
		}
	}

	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "builder failed"
		}
		b.logger.Debug("failed", append(args, "error", desc)...)
		return
	}
	b.logger.Debug("finished", args...)
}

// Shutdown does nothing.
func (b *LogBridge) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush does nothing.
func (b *LogBridge) ForceFlush(_ context.Context) error {
	return nil
}

// NewProvider returns a tracer provider that reports every span through
// the logger.
func NewProvider(logger ports.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewLogBridge(logger)))
}
