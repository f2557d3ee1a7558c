package domain

import (
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ReferenceKind distinguishes module references from project references.
type ReferenceKind string

const (
	// ReferenceModule points at every project of a module.
	ReferenceModule ReferenceKind = "module"
	// ReferenceProject points at a single project.
	ReferenceProject ReferenceKind = "project"
)

// Reference is the stable identity of a module or project inside a suite.
type Reference struct {
	URI     string
	Kind    ReferenceKind
	Module  string
	Project string
}

// ModuleReference returns the reference of the named module.
func ModuleReference(module string) Reference {
	return Reference{
		URI:    string(ReferenceModule) + ":" + module,
		Kind:   ReferenceModule,
		Module: module,
	}
}

// ProjectReference returns the reference of the named project.
func ProjectReference(module, project string) Reference {
	return Reference{
		URI:     string(ReferenceProject) + ":" + module + "/" + project,
		Kind:    ReferenceProject,
		Module:  module,
		Project: project,
	}
}

// ParseReference parses "module" or "module/project" into a Reference.
func ParseReference(s string) (Reference, error) {
	module, project, found := strings.Cut(s, "/")
	switch {
	case module == "":
		return Reference{}, zerr.With(ErrInvalidReference, "reference", s)
	case !found:
		return ModuleReference(module), nil
	case project == "" || strings.Contains(project, "/"):
		return Reference{}, zerr.With(ErrInvalidReference, "reference", s)
	default:
		return ProjectReference(module, project), nil
	}
}

// String returns the reference URI.
func (r Reference) String() string {
	return r.URI
}

// Parameters is a named block of build parameters.
type Parameters map[string]any

// ParameterBlocks maps block names to parameter blocks.
type ParameterBlocks map[string]Parameters

// Suite is the root of the navigation tree: a set of modules sharing settings.
type Suite struct {
	Settings   Settings
	Parameters ParameterBlocks
	Modules    []*Module
}

// Module groups related projects.
type Module struct {
	Name       string
	Parameters ParameterBlocks
	Projects   []*Project

	suite *Suite
}

// Project is a single buildable unit of a module.
type Project struct {
	Name       string
	Kind       string
	Sources    []string
	Command    []string
	Outputs    []string
	References []Reference
	CopyTo     string

	// Parameters holds project-level overrides keyed by block name. Every key
	// is a block the project depends on, even when the override is empty.
	Parameters ParameterBlocks

	module *Module
}

// NewSuite links modules and projects to their parents and sorts them by name.
func NewSuite(settings Settings, params ParameterBlocks, modules ...*Module) *Suite {
	s := &Suite{
		Settings:   settings,
		Parameters: params,
		Modules:    modules,
	}
	slices.SortFunc(s.Modules, func(a, b *Module) int { return strings.Compare(a.Name, b.Name) })
	for _, m := range s.Modules {
		m.suite = s
		slices.SortFunc(m.Projects, func(a, b *Project) int { return strings.Compare(a.Name, b.Name) })
		for _, p := range m.Projects {
			p.module = m
		}
	}
	return s
}

// Module returns the named module.
func (s *Suite) Module(name string) (*Module, bool) {
	for _, m := range s.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Project resolves a project reference.
func (s *Suite) Project(ref Reference) (*Project, bool) {
	if ref.Kind != ReferenceProject {
		return nil, false
	}
	m, ok := s.Module(ref.Module)
	if !ok {
		return nil, false
	}
	return m.Project(ref.Project)
}

// Projects returns every project of the suite, ordered by module then project name.
func (s *Suite) Projects() []*Project {
	var out []*Project
	for _, m := range s.Modules {
		out = append(out, m.Projects...)
	}
	return out
}

// Suite returns the owning suite.
func (m *Module) Suite() *Suite {
	return m.suite
}

// Reference returns the module's reference.
func (m *Module) Reference() Reference {
	return ModuleReference(m.Name)
}

// Project returns the named project of the module.
func (m *Module) Project(name string) (*Project, bool) {
	for _, p := range m.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Module returns the owning module.
func (p *Project) Module() *Module {
	return p.module
}

// Reference returns the project's reference.
func (p *Project) Reference() Reference {
	return ProjectReference(p.module.Name, p.Name)
}

// ParameterNames returns the sorted names of the blocks the project uses.
func (p *Project) ParameterNames() []string {
	return slices.Sorted(maps.Keys(p.Parameters))
}

// ParameterBlock resolves a parameter block, layering the module and project
// scopes over the suite scope. Keys at a deeper scope win.
func (p *Project) ParameterBlock(name string) (Parameters, bool) {
	var scopes []ParameterBlocks
	if m := p.module; m != nil {
		if s := m.suite; s != nil {
			scopes = append(scopes, s.Parameters)
		}
		scopes = append(scopes, m.Parameters)
	}
	scopes = append(scopes, p.Parameters)

	var (
		merged Parameters
		found  bool
	)
	for _, scope := range scopes {
		block, ok := scope[name]
		if !ok {
			continue
		}
		found = true
		if merged == nil {
			merged = make(Parameters, len(block))
		}
		maps.Copy(merged, block)
	}
	return merged, found
}
