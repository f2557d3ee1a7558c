package telemetry

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.opentelemetry.io/otel"
	"go.trai.ch/bake/internal/adapters/logger" //nolint:depguard // Spans are reported through the logger
	"go.trai.ch/bake/internal/core/ports"
)

const (
	// TracerNodeID is the unique identifier for the tracer Graft node.
	TracerNodeID graft.ID = "adapter.telemetry"
	// MetricsNodeID is the unique identifier for the metrics Graft node.
	MetricsNodeID graft.ID = "adapter.metrics"
)

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tp := NewProvider(log)
			otel.SetTracerProvider(tp)
			return NewOTelTracer(
				WithTracerProvider(tp),
				WithOutput(os.Stdout),
				WithShutdown(tp.Shutdown),
			), nil
		},
	})

	graft.Register(graft.Node[ports.Metrics]{
		ID:        MetricsNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Metrics, error) {
			m, mp, err := NewRecordingMetrics()
			if err != nil {
				return nil, err
			}
			otel.SetMeterProvider(mp)
			return m, nil
		},
	})
}
