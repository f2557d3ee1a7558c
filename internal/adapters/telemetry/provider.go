// Package telemetry adapts OpenTelemetry to the tracer and metrics ports.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/bake/internal/core/ports"
)

// InstrumentationName is the name builder spans are recorded under.
const InstrumentationName = "go.trai.ch/bake"

// OTelTracer is a concrete implementation of ports.Tracer using OpenTelemetry.
type OTelTracer struct {
	tracer   trace.Tracer
	out      io.Writer
	shutdown func(context.Context) error
}

// TracerOption configures an OTelTracer.
type TracerOption func(*OTelTracer)

// WithOutput streams everything written to a span to w as well.
func WithOutput(w io.Writer) TracerOption {
	return func(t *OTelTracer) {
		t.out = w
	}
}

// WithTracerProvider records spans with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(t *OTelTracer) {
		t.tracer = tp.Tracer(InstrumentationName)
	}
}

// WithShutdown registers the function Shutdown delegates to.
func WithShutdown(fn func(context.Context) error) TracerOption {
	return func(t *OTelTracer) {
		t.shutdown = fn
	}
}

// NewOTelTracer creates a new OTelTracer.
func NewOTelTracer(opts ...TracerOption) *OTelTracer {
	t := &OTelTracer{tracer: otel.Tracer(InstrumentationName)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &OTelSpan{span: span, out: t.out}
}

// Shutdown flushes and stops the underlying provider, if one was registered.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	if t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}

// OTelSpan is a concrete implementation of ports.Span using OpenTelemetry.
type OTelSpan struct {
	span trace.Span
	out  io.Writer
}

// End completes the span.
func (s *OTelSpan) End() {
	s.span.End()
}

// RecordError records err on the span and marks it as failed.
func (s *OTelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write satisfies io.Writer by adding a log event to the span and copying p
// to the tracer output.
func (s *OTelSpan) Write(p []byte) (int, error) {
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	if s.out != nil {
		return s.out.Write(p)
	}
	return len(p), nil
}
