package app_test

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/telemetry"
	"go.trai.ch/bake/internal/app"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/core/ports/mocks"
	"go.trai.ch/bake/internal/engine/plugin"
	"go.uber.org/mock/gomock"
)

type acceptAll struct{}

func (acceptAll) Changed(ports.WatchEvent) bool { return true }

type harness struct {
	loader   *mocks.MockConfigLoader
	executor *mocks.MockExecutor
	resolver *mocks.MockInputResolver
	opener   *mocks.MockCacheOpener
	cache    *mocks.MockFingerprintCache
	tracer   *mocks.MockTracer
	metrics  *mocks.MockMetrics
	logger   *mocks.MockLogger
	watcher  *mocks.MockWatcher
	stdout   *bytes.Buffer
	app      *app.App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		loader:   mocks.NewMockConfigLoader(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		resolver: mocks.NewMockInputResolver(ctrl),
		opener:   mocks.NewMockCacheOpener(ctrl),
		cache:    mocks.NewMockFingerprintCache(ctrl),
		tracer:   mocks.NewMockTracer(ctrl),
		metrics:  mocks.NewMockMetrics(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
		stdout:   &bytes.Buffer{},
	}

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	h.tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()

	h.metrics.EXPECT().CacheHit(gomock.Any(), gomock.Any()).AnyTimes()
	h.metrics.EXPECT().CacheMiss(gomock.Any(), gomock.Any()).AnyTimes()
	h.metrics.EXPECT().BuilderFinished(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	h.logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	h.resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any()).DoAndReturn(
		func(inputs []string, _ string) ([]string, error) { return inputs, nil },
	).AnyTimes()

	h.app = app.New(h.loader, h.executor, h.resolver, h.opener, h.tracer, h.metrics, h.logger, h.watcher, acceptAll{}).
		WithOutput(h.stdout).
		WithDebounceWindow(10 * time.Millisecond)
	return h
}

// expectSession expects one session to open and close the cache.
func (h *harness) expectSession() {
	h.opener.EXPECT().Open(gomock.Any()).Return(h.cache, nil)
	h.cache.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()
	h.cache.EXPECT().Put(gomock.Any()).Return(nil).AnyTimes()
	h.cache.EXPECT().Close().Return(nil)
}

// docsSuite creates a suite with a single content project site/docs.
func docsSuite(t *testing.T, sources ...string) *domain.Suite {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "index.md"), []byte("# bake"), 0o600))

	if len(sources) == 0 {
		sources = []string{"docs/index.md"}
	}
	docs := &domain.Project{Name: "docs", Kind: plugin.KindContent, Sources: sources}
	return domain.NewSuite(domain.DefaultSettings(root), nil, &domain.Module{Name: "site", Projects: []*domain.Project{docs}})
}

func TestApp_Run(t *testing.T) {
	h := newHarness(t)
	suite := docsSuite(t)

	h.loader.EXPECT().Load(".").Return(suite, nil)
	h.expectSession()
	h.logger.EXPECT().Info("built site/docs (1 outputs)")

	require.NoError(t, h.app.Run(context.Background(), []string{"site/docs"}, app.RunOptions{}))
	assert.FileExists(t, suite.Settings.TargetPath("site/docs/docs/index.md"))
	assert.Empty(t, h.stdout.String())
}

func TestApp_Run_Stats(t *testing.T) {
	h := newHarness(t)

	h.loader.EXPECT().Load(".").Return(docsSuite(t), nil)
	h.expectSession()
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	require.NoError(t, h.app.Run(context.Background(), []string{"all"}, app.RunOptions{Stats: true, NoCache: true}))
	assert.Contains(t, h.stdout.String(), "unique")
}

func TestApp_Run_StatsIncludesMetrics(t *testing.T) {
	h := newHarness(t)
	metrics, _, err := telemetry.NewRecordingMetrics()
	require.NoError(t, err)
	t.Cleanup(func() { _ = metrics.Shutdown(context.Background()) })

	a := app.New(h.loader, h.executor, h.resolver, h.opener, h.tracer, metrics, h.logger, h.watcher, acceptAll{}).
		WithOutput(h.stdout)

	h.loader.EXPECT().Load(".").Return(docsSuite(t), nil)
	h.expectSession()
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	require.NoError(t, a.Run(context.Background(), []string{"site/docs"}, app.RunOptions{Stats: true}))

	out := h.stdout.String()
	assert.Contains(t, out, "unique")
	assert.Contains(t, out, "builder metrics:")
	assert.Regexp(t, `bake_cache_misses_total\s+1\n`, out)
	assert.Regexp(t, `bake_cache_hits_total\s+0\n`, out)
}

func TestApp_Run_NoTargets(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(docsSuite(t), nil)

	err := h.app.Run(context.Background(), nil, app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestApp_Run_LoadError(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigNotFound)

	err := h.app.Run(context.Background(), []string{"all"}, app.RunOptions{})
	assert.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
}

func TestApp_Run_UnknownTarget(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(docsSuite(t), nil)

	err := h.app.Run(context.Background(), []string{"api"}, app.RunOptions{})
	assert.ErrorContains(t, err, domain.ErrTargetNotFound.Error())
}

func TestApp_Run_BuildFailure(t *testing.T) {
	h := newHarness(t)

	h.loader.EXPECT().Load(".").Return(docsSuite(t, "docs/missing.md"), nil)
	h.expectSession()
	h.logger.EXPECT().Error(gomock.Any())

	err := h.app.Run(context.Background(), []string{"site"}, app.RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorContains(t, err, "docs/missing.md")
}

func TestApp_Graph(t *testing.T) {
	for _, bfs := range []bool{false, true} {
		h := newHarness(t)
		h.loader.EXPECT().Load(".").Return(docsSuite(t), nil)

		require.NoError(t, h.app.Graph(context.Background(), "all", app.GraphOptions{BreadthFirst: bfs}))

		lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "merge-"), lines[0])
		assert.Contains(t, lines[0], "merge(description, all)")
		assert.Contains(t, lines[1], "merge(projects, site/docs)")
		assert.Contains(t, lines[2], "content(site/docs")
	}
}

func TestApp_Graph_UnknownTarget(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(docsSuite(t), nil)

	err := h.app.Graph(context.Background(), "site/api", app.GraphOptions{})
	assert.ErrorContains(t, err, domain.ErrTargetNotFound.Error())
	assert.Empty(t, h.stdout.String())
}

func TestApp_Clean(t *testing.T) {
	tests := []struct {
		name     string
		opts     app.CleanOptions
		keepsOut bool
	}{
		{name: "cache only", opts: app.CleanOptions{}, keepsOut: true},
		{name: "all", opts: app.CleanOptions{All: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			suite := docsSuite(t)
			settings := suite.Settings
			require.NoError(t, os.MkdirAll(settings.Cache.Dir, 0o750))
			require.NoError(t, os.MkdirAll(settings.TargetRoot, 0o750))

			h.loader.EXPECT().Load(".").Return(suite, nil)
			h.logger.EXPECT().Info(gomock.Any()).AnyTimes()

			require.NoError(t, h.app.Clean(context.Background(), tt.opts))

			assert.NoDirExists(t, settings.Cache.Dir)
			if tt.keepsOut {
				assert.DirExists(t, settings.TargetRoot)
			} else {
				assert.NoDirExists(t, settings.TargetRoot)
			}
		})
	}
}

func TestApp_Watch(t *testing.T) {
	h := newHarness(t)
	suite := docsSuite(t)
	settings := suite.Settings

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan ports.WatchEvent, 1)
	t.Cleanup(func() { close(events) })

	var skip func(string) bool
	h.loader.EXPECT().Load(".").Return(suite, nil)
	h.expectSession()
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	h.watcher.EXPECT().Start(gomock.Any(), settings.SuiteRoot, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, s func(string) bool) error {
			skip = s
			events <- ports.WatchEvent{Path: filepath.Join(settings.SuiteRoot, "docs", "index.md"), Operation: ports.OpWrite}
			return nil
		},
	)
	h.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		for e := range events {
			if !yield(e) {
				return
			}
		}
	}))
	h.watcher.EXPECT().Stop().Return(nil)

	// The rebuild reloads the suite; failing it ends the test.
	reloadErr := errors.New("bake.yaml vanished")
	h.loader.EXPECT().Load(".").DoAndReturn(func(string) (*domain.Suite, error) {
		cancel()
		return nil, reloadErr
	})
	h.logger.EXPECT().Error(gomock.Any())

	require.NoError(t, h.app.Watch(ctx, []string{"site/docs"}, app.RunOptions{}))

	require.NotNil(t, skip)
	assert.True(t, skip(settings.TargetRoot))
	assert.True(t, skip(filepath.Join(settings.Cache.Dir, "kv")))
	assert.True(t, skip(filepath.Join(settings.SuiteRoot, domain.BakeDirName)))
	assert.False(t, skip(filepath.Join(settings.SuiteRoot, "docs")))
	assert.False(t, skip(filepath.Join(settings.SuiteRoot, "outside")))
}

func TestApp_Watch_NoTargets(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(docsSuite(t), nil)

	err := h.app.Watch(context.Background(), nil, app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}
