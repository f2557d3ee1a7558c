package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/config"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	return config.NewLoader(mocks.NewMockLogger(ctrl), "content", "exec")
}

const fullSuite = `
version: "1"
targetRoot: build
cache:
  dir: tmp/cache
  backend: badger
  format: json
  memo: 0
parameters:
  go:
    version: "1.22"
modules:
  core:
    parameters:
      go:
        flags: -trimpath
    projects:
      util:
        sources: ["core/util/*.go"]
      lib:
        kind: exec
        sources: ["core/lib/*.go"]
        command: ["sh", "-c", "cp core/lib/*.go $BAKE_OUT/"]
        outputs: ["lib.go", "lib.go", "a.go"]
        references: ["core/util"]
        parameters: [go]
        copyTo: dist/lib
  docs:
    projects:
      site:
        kind: content
        sources: ["docs/*.md"]
        references: ["core"]
        parameters:
          go: {version: "1.23"}
          render:
`

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.SuiteFileName, fullSuite)

	suite, err := newLoader(t).Load(root)
	require.NoError(t, err)

	t.Run("settings", func(t *testing.T) {
		assert.Equal(t, domain.Settings{
			SuiteRoot:  root,
			TargetRoot: filepath.Join(root, "build"),
			Cache: domain.CacheSettings{
				Dir:     filepath.Join(root, "tmp", "cache"),
				Backend: domain.CacheBackendBadger,
				Format:  domain.FormatJSON,
				Memo:    0,
			},
		}, suite.Settings)
	})

	t.Run("modules are sorted", func(t *testing.T) {
		require.Len(t, suite.Modules, 2)
		assert.Equal(t, "core", suite.Modules[0].Name)
		assert.Equal(t, "docs", suite.Modules[1].Name)
	})

	t.Run("exec project", func(t *testing.T) {
		lib, ok := suite.Project(domain.ProjectReference("core", "lib"))
		require.True(t, ok)
		assert.Equal(t, "exec", lib.Kind)
		assert.Equal(t, []string{"a.go", "lib.go"}, lib.Outputs)
		assert.Equal(t, []domain.Reference{domain.ProjectReference("core", "util")}, lib.References)
		assert.Equal(t, "dist/lib", lib.CopyTo)
		assert.Equal(t, []string{"go"}, lib.ParameterNames())

		block, ok := lib.ParameterBlock("go")
		require.True(t, ok)
		assert.Equal(t, domain.Parameters{"version": "1.22", "flags": "-trimpath"}, block)
	})

	t.Run("default kind", func(t *testing.T) {
		util, ok := suite.Project(domain.ProjectReference("core", "util"))
		require.True(t, ok)
		assert.Equal(t, "content", util.Kind)
	})

	t.Run("parameter overrides", func(t *testing.T) {
		site, ok := suite.Project(domain.ProjectReference("docs", "site"))
		require.True(t, ok)
		assert.Equal(t, []string{"go", "render"}, site.ParameterNames())
		assert.Equal(t, []domain.Reference{domain.ModuleReference("core")}, site.References)

		block, ok := site.ParameterBlock("go")
		require.True(t, ok)
		assert.Equal(t, "1.23", block["version"])

		render, ok := site.ParameterBlock("render")
		require.True(t, ok)
		assert.Empty(t, render)
	})
}

func TestLoader_Defaults(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.SuiteFileName, "modules: {}\n")

	suite, err := newLoader(t).Load(root)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(root), suite.Settings)
	assert.Empty(t, suite.Modules)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "reserved module name",
			content: "modules:\n  all:\n    projects: {}\n",
			wantErr: domain.ErrReservedName,
		},
		{
			name:    "invalid module name",
			content: "modules:\n  \"core:lib\":\n    projects: {}\n",
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "invalid project name",
			content: "modules:\n  core:\n    projects:\n      \"a b\":\n        sources: [x]\n",
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "unknown kind",
			content: "modules:\n  core:\n    projects:\n      lib:\n        kind: rpm\n",
			wantErr: domain.ErrUnknownProjectKind,
		},
		{
			name:    "missing project reference",
			content: "modules:\n  core:\n    projects:\n      lib:\n        references: [core/ghost]\n",
			wantErr: domain.ErrMissingReference,
		},
		{
			name:    "missing module reference",
			content: "modules:\n  core:\n    projects:\n      lib:\n        references: [ghost]\n",
			wantErr: domain.ErrMissingReference,
		},
		{
			name:    "invalid reference",
			content: "modules:\n  core:\n    projects:\n      lib:\n        references: [core/a/b]\n",
			wantErr: domain.ErrInvalidReference,
		},
		{
			name:    "unknown cache backend",
			content: "cache:\n  backend: tape\n",
			wantErr: domain.ErrUnknownCacheBackend,
		},
		{
			name:    "negative memo",
			content: "cache:\n  memo: -1\n",
			wantErr: domain.ErrInvalidSettings,
		},
		{
			name:    "malformed yaml",
			content: "modules: [\n",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "parameters of the wrong shape",
			content: "modules:\n  core:\n    projects:\n      lib:\n        parameters: 3\n",
			wantErr: domain.ErrConfigParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			createFile(t, root, domain.SuiteFileName, tt.content)

			_, err := newLoader(t).Load(root)
			assert.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestLoader_UnsupportedVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn("unsupported suite file version", "version", "2", "supported", config.SupportedVersion)

	root := t.TempDir()
	createFile(t, root, domain.SuiteFileName, "version: \"2\"\n")

	_, err := config.NewLoader(log).Load(root)
	require.NoError(t, err)
}

func TestLoader_AcceptsAnyKindWithoutTable(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.SuiteFileName, "modules:\n  core:\n    projects:\n      lib:\n        kind: rpm\n")

	suite, err := config.NewLoader(mocks.NewMockLogger(gomock.NewController(t))).Load(root)
	require.NoError(t, err)
	assert.Equal(t, "rpm", suite.Projects()[0].Kind)
}
