package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/cmd/bake/commands"
	"go.trai.ch/bake/internal/app"
	"go.trai.ch/bake/internal/build"
)

type mockApp struct {
	runFunc   func(ctx context.Context, targetNames []string, opts app.RunOptions) error
	watchFunc func(ctx context.Context, targetNames []string, opts app.RunOptions) error
	graphFunc func(ctx context.Context, target string, opts app.GraphOptions) error
	cleanFunc func(ctx context.Context, opts app.CleanOptions) error
}

func (m *mockApp) Run(ctx context.Context, targetNames []string, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, targetNames, opts)
	}
	return nil
}

func (m *mockApp) Watch(ctx context.Context, targetNames []string, opts app.RunOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, targetNames, opts)
	}
	return nil
}

func (m *mockApp) Graph(ctx context.Context, target string, opts app.GraphOptions) error {
	if m.graphFunc != nil {
		return m.graphFunc(ctx, target, opts)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil
}

type logSettings struct {
	verbose bool
	json    bool
}

func (l *logSettings) SetVerbose(enable bool) { l.verbose = enable }
func (l *logSettings) SetJSON(enable bool)    { l.json = enable }

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.RunOptions
		var capturedTargets []string

		mock := &mockApp{
			runFunc: func(_ context.Context, targetNames []string, opts app.RunOptions) error {
				capturedOpts = opts
				capturedTargets = targetNames
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "core", "docs/guide", "--no-cache", "--stats"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, app.RunOptions{NoCache: true, Stats: true}, capturedOpts)
		assert.Equal(t, []string{"core", "docs/guide"}, capturedTargets)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "all"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no targets provided", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"run"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Contains(t, buf.String(), "Usage:")
	})
}

func TestCommands_Watch(t *testing.T) {
	var capturedOpts app.RunOptions
	var capturedTargets []string
	mock := &mockApp{
		watchFunc: func(_ context.Context, targetNames []string, opts app.RunOptions) error {
			capturedOpts = opts
			capturedTargets = targetNames
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"watch", "all", "--no-cache"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, capturedOpts.NoCache)
	assert.Equal(t, []string{"all"}, capturedTargets)

	cli = commands.New(mock)
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"watch"})
	assert.Error(t, cli.Execute(context.Background()))
}

func TestCommands_Graph(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.GraphOptions
	}{
		{name: "depth first", args: []string{"graph", "core/lib"}},
		{name: "breadth first", args: []string{"graph", "core/lib", "--bfs"}, want: app.GraphOptions{BreadthFirst: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTarget string
			var gotOpts app.GraphOptions
			mock := &mockApp{
				graphFunc: func(_ context.Context, target string, opts app.GraphOptions) error {
					gotTarget = target
					gotOpts = opts
					return nil
				},
			}

			cli := commands.New(mock)
			cli.SetArgs(tt.args)
			require.NoError(t, cli.Execute(context.Background()))
			assert.Equal(t, "core/lib", gotTarget)
			assert.Equal(t, tt.want, gotOpts)
		})
	}

	t.Run("requires one target", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"graph", "a", "b"})
		assert.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Clean(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.CleanOptions
	}{
		{name: "cache only", args: []string{"clean"}},
		{name: "all", args: []string{"clean", "--all"}, want: app.CleanOptions{All: true}},
		{name: "all shorthand", args: []string{"clean", "-a"}, want: app.CleanOptions{All: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mock := &mockApp{
				cleanFunc: func(_ context.Context, opts app.CleanOptions) error {
					called = true
					assert.Equal(t, tt.want, opts)
					return nil
				},
			}

			cli := commands.New(mock)
			cli.SetArgs(tt.args)
			require.NoError(t, cli.Execute(context.Background()))
			assert.True(t, called)
		})
	}
}

func TestCommands_LogFlags(t *testing.T) {
	settings := &logSettings{}
	cli := commands.New(&mockApp{}, commands.WithLogConfigurer(settings))
	cli.SetArgs([]string{"clean", "--verbose", "--json"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, settings.verbose)
	assert.True(t, settings.json)
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "bake version "+build.Version)
}
