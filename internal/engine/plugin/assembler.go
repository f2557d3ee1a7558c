package plugin

import (
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/builder"
	"go.trai.ch/zerr"
)

// TargetAll names the target covering every module of the suite.
const TargetAll = "all"

// Assembler builds the builder graph for targets of a suite. Each project is
// assembled once; later requests return the same builder.
type Assembler struct {
	table    *Table
	suite    *domain.Suite
	resolver ports.InputResolver

	projects map[string]builder.Builder
	modules  map[string]builder.Builder
	visiting map[string]bool
}

// NewAssembler creates an assembler for suite.
func NewAssembler(table *Table, suite *domain.Suite, resolver ports.InputResolver) *Assembler {
	return &Assembler{
		table:    table,
		suite:    suite,
		resolver: resolver,
		projects: make(map[string]builder.Builder),
		modules:  make(map[string]builder.Builder),
		visiting: make(map[string]bool),
	}
}

// Targets resolves each target name. See Target.
func (a *Assembler) Targets(names ...string) ([]builder.Builder, error) {
	if len(names) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}
	out := make([]builder.Builder, 0, len(names))
	for _, name := range names {
		b, err := a.Target(name)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Target resolves "all", a module name or "module/project" to a builder.
func (a *Assembler) Target(name string) (builder.Builder, error) {
	if name == TargetAll {
		return a.All()
	}

	ref, err := domain.ParseReference(name)
	if err != nil {
		return nil, zerr.With(domain.ErrTargetNotFound, "target", name)
	}
	b, err := a.Reference(ref)
	if err != nil {
		return nil, zerr.With(err, "target", name)
	}
	return b, nil
}

// All merges every module of the suite.
func (a *Assembler) All() (builder.Builder, error) {
	sources := make([]builder.Builder, 0, len(a.suite.Modules))
	for _, m := range a.suite.Modules {
		b, err := a.Module(m.Name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, b)
	}
	return builder.NewMerging(builder.DescriptionTag(TargetAll), sources...), nil
}

// Reference resolves a module or project reference.
func (a *Assembler) Reference(ref domain.Reference) (builder.Builder, error) {
	if ref.Kind == domain.ReferenceModule {
		return a.Module(ref.Module)
	}
	return a.Project(ref)
}

// Module merges every project of the named module.
func (a *Assembler) Module(name string) (builder.Builder, error) {
	if b, ok := a.modules[name]; ok {
		return b, nil
	}

	m, ok := a.suite.Module(name)
	if !ok {
		return nil, zerr.With(domain.ErrTargetNotFound, "module", name)
	}

	names := make([]string, 0, len(m.Projects))
	sources := make([]builder.Builder, 0, len(m.Projects))
	for _, p := range m.Projects {
		b, err := a.Project(p.Reference())
		if err != nil {
			return nil, err
		}
		names = append(names, p.Name)
		sources = append(sources, b)
	}

	b := builder.NewMerging(builder.ProjectSetTag(prefixed(name, names)...), sources...)
	a.modules[name] = b
	return b, nil
}

// Project assembles the builder of a single project, including the builders
// of everything it references.
func (a *Assembler) Project(ref domain.Reference) (builder.Builder, error) {
	if b, ok := a.projects[ref.URI]; ok {
		return b, nil
	}

	p, ok := a.suite.Project(ref)
	if !ok {
		return nil, zerr.With(domain.ErrTargetNotFound, "project", ref.URI)
	}

	if a.visiting[ref.URI] {
		return nil, zerr.With(domain.ErrCycleDetected, "project", ref.URI)
	}
	a.visiting[ref.URI] = true
	defer delete(a.visiting, ref.URI)

	factory, err := a.table.Lookup(p.Kind)
	if err != nil {
		return nil, zerr.With(err, "project", ref.URI)
	}

	sources, err := a.resolver.ResolveInputs(p.Sources, a.suite.Settings.SuiteRoot)
	if err != nil {
		return nil, zerr.With(err, "project", ref.URI)
	}

	refs := make([]builder.Builder, 0, len(p.References))
	for _, r := range p.References {
		b, err := a.Reference(r)
		if err != nil {
			return nil, err
		}
		refs = append(refs, b)
	}

	b, err := factory.Build(Request{
		Project:    p,
		Settings:   a.suite.Settings,
		Sources:    sources,
		References: refs,
	})
	if err != nil {
		return nil, err
	}
	if p.CopyTo != "" {
		b = builder.NewCopyResult(b, p.CopyTo)
	}

	a.projects[ref.URI] = b
	return b, nil
}

// prefixed qualifies project names with their module so that project-set
// tags of different modules never collide.
func prefixed(module string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = module + "/" + n
	}
	return out
}
