package dependency_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/fingerprint"
	"go.trai.ch/bake/internal/engine/dependency"
)

func mustFingerprint(t *testing.T, d dependency.Dependencies) fingerprint.Fingerprint {
	t.Helper()
	fp, err := d.Fingerprint()
	require.NoError(t, err)
	require.NotNil(t, fp)
	return fp
}

type failing struct{}

func (failing) Fingerprint() (fingerprint.Fingerprint, error) {
	return nil, errors.New("boom")
}

type staticDependent struct {
	deps dependency.Dependencies
}

func (s staticDependent) Dependencies() dependency.Dependencies { return s.deps }

func TestNoDependencies_AlwaysEqual(t *testing.T) {
	a := mustFingerprint(t, dependency.NoDependencies{})
	b := mustFingerprint(t, dependency.NoDependencies{})
	assert.True(t, a.Equal(b))

	restored, err := a.Protocol().CreateFingerprint()
	require.NoError(t, err)
	assert.True(t, a.Equal(restored))
}

func TestMultiple(t *testing.T) {
	refA := dependency.Reference{Ref: domain.ModuleReference("a")}
	refB := dependency.Reference{Ref: domain.ModuleReference("b")}

	ab := mustFingerprint(t, dependency.NewMultiple(refA, refB))
	ba := mustFingerprint(t, dependency.NewMultiple(refB, nil, refA))
	assert.True(t, ab.Equal(ba), "order must not matter")

	onlyA := mustFingerprint(t, dependency.NewMultiple(refA))
	assert.False(t, ab.Equal(onlyA))

	assert.Len(t, dependency.NewMultiple(refA, nil).Children(), 1)

	_, err := dependency.NewMultiple(refA, failing{}).Fingerprint()
	assert.ErrorContains(t, err, "boom")
}

func TestReference(t *testing.T) {
	mod := mustFingerprint(t, dependency.Reference{Ref: domain.ModuleReference("core")})
	same := mustFingerprint(t, dependency.Reference{Ref: domain.ModuleReference("core")})
	proj := mustFingerprint(t, dependency.Reference{Ref: domain.ProjectReference("core", "lib")})

	assert.True(t, mod.Equal(same))
	assert.False(t, mod.Equal(proj))
}

func TestParameters_Inheritance(t *testing.T) {
	lib := &domain.Project{Name: "lib", Parameters: domain.ParameterBlocks{"go": {}}}
	core := &domain.Module{
		Name:       "core",
		Parameters: domain.ParameterBlocks{"go": {"flags": "-trimpath"}},
		Projects:   []*domain.Project{lib},
	}
	suite := domain.NewSuite(domain.DefaultSettings("/suite"), domain.ParameterBlocks{"go": {"version": "1.22"}}, core)

	dep := dependency.Parameters{Name: "go", Scope: lib}
	before := mustFingerprint(t, dep)
	assert.True(t, before.Equal(mustFingerprint(t, dep)))

	suite.Parameters["go"]["version"] = "1.23"
	afterSuite := mustFingerprint(t, dep)
	assert.False(t, before.Equal(afterSuite), "suite-level change must propagate")

	lib.Parameters["go"] = domain.Parameters{"version": "1.23"}
	shadowed := mustFingerprint(t, dep)
	assert.True(t, afterSuite.Equal(shadowed), "override with an identical value keeps the resolved block")

	core.Parameters["unrelated"] = domain.Parameters{"x": 1}
	assert.True(t, shadowed.Equal(mustFingerprint(t, dep)), "unrelated blocks are not tracked")
}

func TestParameters_MissingBlock(t *testing.T) {
	lib := &domain.Project{Name: "lib"}
	domain.NewSuite(domain.DefaultSettings("/suite"), nil, &domain.Module{Name: "core", Projects: []*domain.Project{lib}})

	missing := mustFingerprint(t, dependency.Parameters{Name: "go", Scope: lib})
	otherMissing := mustFingerprint(t, dependency.Parameters{Name: "rust", Scope: lib})
	assert.False(t, missing.Equal(otherMissing), "block name is part of the fingerprint")

	lib.Parameters = domain.ParameterBlocks{"go": {}}
	assert.False(t, missing.Equal(mustFingerprint(t, dependency.Parameters{Name: "go", Scope: lib})))
}

func TestSubtask(t *testing.T) {
	inner := dependency.Reference{Ref: domain.ModuleReference("core")}
	sub := mustFingerprint(t, dependency.Subtask{Of: staticDependent{deps: inner}})
	assert.True(t, sub.Equal(mustFingerprint(t, inner)))
}

func TestSourceSet(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o750))
	write := func(name, content string) {
		p := filepath.Join(root, "src", name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(p, stamp, stamp))
	}
	write("a.go", "package a")
	write("b.go", "package b")

	set := dependency.SourceSet{Root: root, Paths: []string{"src/b.go", "src/a.go"}}
	before := mustFingerprint(t, set)
	assert.True(t, before.Equal(mustFingerprint(t, dependency.SourceSet{Root: root, Paths: []string{"src/a.go", "src/b.go"}})))

	write("b.go", "package bb")
	assert.False(t, before.Equal(mustFingerprint(t, set)))

	single := mustFingerprint(t, dependency.Path{Root: root, Rel: "src/missing.go"})
	assert.False(t, single.Equal(mustFingerprint(t, dependency.Path{Root: root, Rel: "src/a.go"})))
}
