package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// Metrics records counters about builder execution.
type Metrics interface {
	// CacheHit records a builder whose cached outputs were reused.
	CacheHit(ctx context.Context, builderType string)
	// CacheMiss records a builder that had to run.
	CacheMiss(ctx context.Context, builderType string)
	// BuilderFinished records the terminal status of a builder.
	BuilderFinished(ctx context.Context, builderType, status string)
}
