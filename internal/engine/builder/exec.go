package builder

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"slices"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/dependency"
	"go.trai.ch/zerr"
)

// Exec runs a project's command through an executor. The command runs in the
// suite root with BAKE_OUT pointing at the project's output directory.
type Exec struct {
	project    *domain.Project
	executor   ports.Executor
	root       string
	sources    []string
	references []Builder
}

// NewExec creates a builder for project. sources is the resolved,
// suite-relative source snapshot and references holds the builders of the
// projects it references.
func NewExec(project *domain.Project, executor ports.Executor, root string, sources []string, references []Builder) *Exec {
	return &Exec{
		project:    project,
		executor:   executor,
		root:       root,
		sources:    slices.Compact(slices.Sorted(slices.Values(sources))),
		references: slices.Clone(references),
	}
}

// Key implements Builder.
func (e *Exec) Key() Key {
	return NewKey("exec", e.project.Reference().URI)
}

// UID implements Builder.
func (e *Exec) UID() string { return e.Key().UID() }

// Dependencies implements Builder.
func (e *Exec) Dependencies() dependency.Dependencies {
	deps := []dependency.Dependencies{
		dependency.Reference{Ref: e.project.Reference()},
		dependency.Properties{Of: e.project, Names: []string{"Command", "Outputs"}},
		dependency.SourceSet{Root: e.root, Paths: e.sources},
	}
	for _, name := range e.project.ParameterNames() {
		deps = append(deps, dependency.Parameters{Name: name, Scope: e.project})
	}
	for _, ref := range e.references {
		deps = append(deps, dependency.Subtask{Of: ref})
	}
	return dependency.NewMultiple(deps...)
}

// Prerequisites implements Builder.
func (e *Exec) Prerequisites() []Builder { return slices.Clone(e.references) }

// AddToContext implements Builder.
func (e *Exec) AddToContext(bc Context) error { return Register(bc, e) }

// CanRun implements Builder.
func (e *Exec) CanRun() bool {
	if len(e.project.Command) == 0 {
		return false
	}
	_, err := e.executor.LookPath(e.project.Command[0])
	return err == nil
}

// OutputDir returns the project's target-relative output directory.
func (e *Exec) OutputDir() string {
	return path.Join(e.project.Module().Name, e.project.Name)
}

// Run implements Builder.
func (e *Exec) Run(ctx context.Context, bc Context) (domain.OutputSet, error) {
	settings := bc.Settings()
	outDir := settings.TargetPath(e.OutputDir())
	if err := os.MkdirAll(outDir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create output directory"), "dir", outDir)
	}

	cmd := &domain.Command{
		Label: e.UID(),
		Args:  slices.Clone(e.project.Command),
		Dir:   settings.SuiteRoot,
		Env: map[string]string{
			domain.OutputEnvVar: outDir,
			domain.TargetEnvVar: settings.TargetRoot,
		},
		Output: OutputFrom(ctx),
	}
	if err := e.executor.Execute(ctx, cmd); err != nil {
		return nil, err
	}

	outputs := make([]string, 0, len(e.project.Outputs))
	for _, o := range e.project.Outputs {
		rel := path.Join(e.OutputDir(), o)
		if _, err := os.Stat(settings.TargetPath(rel)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, zerr.With(domain.ErrMissingOutput, "output", rel)
			}
			return nil, zerr.With(zerr.Wrap(err, domain.ErrMissingOutput.Error()), "output", rel)
		}
		outputs = append(outputs, rel)
	}
	return domain.NewOutputSet(outputs...), nil
}
