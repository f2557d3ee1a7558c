// Package app implements the application layer for bake.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/bake/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/bake/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/graph"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/builder"
	"go.trai.ch/bake/internal/engine/plugin"
	"go.trai.ch/bake/internal/engine/scheduler"
	"go.trai.ch/bake/internal/engine/session"
	"go.trai.ch/zerr"
)

// ChangeFilter decides whether a watch event warrants a rebuild.
type ChangeFilter interface {
	Changed(event ports.WatchEvent) bool
}

// metricsDumper is implemented by metrics that can report their totals.
type metricsDumper interface {
	DumpTotals(ctx context.Context, w io.Writer) error
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	resolver     ports.InputResolver
	opener       ports.CacheOpener
	tracer       ports.Tracer
	metrics      ports.Metrics
	logger       ports.Logger
	watcher      ports.Watcher
	filter       ChangeFilter

	stdout         io.Writer
	debounceWindow time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	resolver ports.InputResolver,
	opener ports.CacheOpener,
	tracer ports.Tracer,
	metrics ports.Metrics,
	log ports.Logger,
	fileWatcher ports.Watcher,
	filter ChangeFilter,
) *App {
	return &App{
		configLoader:   loader,
		executor:       executor,
		resolver:       resolver,
		opener:         opener,
		tracer:         tracer,
		metrics:        metrics,
		logger:         log,
		watcher:        fileWatcher,
		filter:         filter,
		stdout:         os.Stdout,
		debounceWindow: watcher.DefaultDebounceWindow,
	}
}

// WithOutput sets the writer receiving graph listings and statistics.
func (a *App) WithOutput(w io.Writer) *App {
	a.stdout = w
	return a
}

// WithDebounceWindow sets how long watch mode waits for changes to settle.
func (a *App) WithDebounceWindow(window time.Duration) *App {
	a.debounceWindow = window
	return a
}

// RunOptions configuration for the Run and Watch methods.
type RunOptions struct {
	NoCache bool
	Stats   bool
}

// Run builds the specified targets once.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	suite, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	return a.build(ctx, suite, targetNames, opts)
}

// build assembles the targets of suite and runs them in a fresh session.
func (a *App) build(ctx context.Context, suite *domain.Suite, targetNames []string, opts RunOptions) (err error) {
	roots, err := plugin.NewAssembler(plugin.Builtin(a.executor), suite, a.resolver).Targets(targetNames...)
	if err != nil {
		return err
	}

	s, err := session.New(suite.Settings, a.opener, a.tracer, a.metrics, a.logger, scheduler.WithNoCache(opts.NoCache))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	runErr := s.Run(ctx, roots...)

	if opts.Stats {
		if err := s.DumpStats(a.stdout); err != nil {
			return err
		}
		if d, ok := a.metrics.(metricsDumper); ok {
			if err := d.DumpTotals(ctx, a.stdout); err != nil {
				return err
			}
		}
	}

	if runErr != nil {
		a.logger.Error(runErr)
		return errors.Join(domain.ErrBuildExecutionFailed, runErr)
	}

	for i, root := range roots {
		outputs, err := s.Results(root)
		if err != nil {
			return err
		}
		a.logger.Info(fmt.Sprintf("built %s (%d outputs)", targetNames[i], outputs.Len()))
	}
	return nil
}

// Watch builds the targets, then rebuilds them whenever files below the suite
// root change. It returns when ctx is canceled.
//
//nolint:cyclop // orchestration function
func (a *App) Watch(ctx context.Context, targetNames []string, opts RunOptions) error {
	suite, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	if err := a.build(ctx, suite, targetNames, opts); err != nil && !errors.Is(err, domain.ErrBuildExecutionFailed) {
		return err
	}

	settings := suite.Settings
	if err := a.watcher.Start(ctx, settings.SuiteRoot, watchSkipper(settings)); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	rebuild := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(a.debounceWindow, func(paths []string) {
		// A pending rebuild already covers these paths.
		select {
		case rebuild <- paths:
		default:
		}
	})
	defer debouncer.Stop()

	go func() {
		for event := range a.watcher.Events() {
			if a.filter.Changed(event) {
				a.logger.Debug("file changed", "path", event.Path, "op", event.Operation.String())
				debouncer.Add(event.Path)
			}
		}
	}()

	a.logger.Info("watching for changes...")
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-rebuild:
			a.logger.Info(fmt.Sprintf("%d file(s) changed, rebuilding...", len(paths)))

			// The suite file itself may have changed.
			suite, err := a.configLoader.Load(".")
			if err != nil {
				a.logger.Error(zerr.Wrap(err, "failed to load configuration"))
				continue
			}
			err = a.build(ctx, suite, targetNames, opts)
			if err != nil && !errors.Is(err, domain.ErrBuildExecutionFailed) {
				a.logger.Error(err)
			}
		}
	}
}

// watchSkipper prunes directories written by bake itself.
func watchSkipper(settings domain.Settings) func(path string) bool {
	bakeDir := filepath.Join(settings.SuiteRoot, domain.BakeDirName)
	return func(path string) bool {
		return within(path, bakeDir) || within(path, settings.TargetRoot) || within(path, settings.Cache.Dir)
	}
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// GraphOptions configuration for the Graph method.
type GraphOptions struct {
	BreadthFirst bool
}

// Graph plans target and prints the uid and description of every builder in
// the graph, one per line, in depth-first or breadth-first order.
func (a *App) Graph(_ context.Context, target string, opts GraphOptions) error {
	suite, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	root, err := plugin.NewAssembler(plugin.Builtin(a.executor), suite, a.resolver).Target(target)
	if err != nil {
		return err
	}

	// Planning runs nothing, so it needs neither the cache nor telemetry.
	bc := scheduler.New(suite.Settings, builder.NewStore(), nil, telemetry.NewNoOpTracer(), telemetry.NoOpMetrics{}, a.logger)
	planned, err := bc.Plan(root)
	if err != nil {
		return err
	}

	byUID := map[string]builder.Builder{planned.UID(): planned}
	neighbors := func(uid string) []string {
		prereqs := bc.Prerequisites(byUID[uid])
		for _, p := range prereqs {
			byUID[p.UID()] = p
		}
		return builder.UIDs(prereqs)
	}

	traverse := graph.DepthFirst[string]
	if opts.BreadthFirst {
		traverse = graph.BreadthFirst[string]
	}
	for _, uid := range traverse(planned.UID(), neighbors) {
		if _, err := fmt.Fprintf(a.stdout, "%s  %s\n", uid, byUID[uid].Key()); err != nil {
			return err
		}
	}
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	All bool
}

// Clean removes the fingerprint cache and, with All, the target root.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	suite, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error

	// Helper to remove a directory and log the action
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	remove(suite.Settings.Cache.Dir, "fingerprint cache")
	if options.All {
		remove(suite.Settings.TargetRoot, "target root")
	}

	return errs
}
