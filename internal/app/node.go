package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bake/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/bake/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/bake/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/bake/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/bake/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/bake/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/bake/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/bake/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			fs.ResolverNodeID,
			cas.NodeID,
			telemetry.TracerNodeID,
			telemetry.MetricsNodeID,
			logger.NodeID,
			watcher.WatcherNodeID,
			watcher.ContentFilterNodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	resolver, err := graft.Dep[ports.InputResolver](ctx)
	if err != nil {
		return nil, err
	}

	opener, err := graft.Dep[ports.CacheOpener](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	metrics, err := graft.Dep[ports.Metrics](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	fileWatcher, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	filter, err := graft.Dep[*watcher.ContentFilter](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, executor, resolver, opener, tracer, metrics, log, fileWatcher, filter), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return NewComponents(app, log, loader, tracer), nil
}
