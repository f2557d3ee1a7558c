package plugin

import (
	"path"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/builder"
	"go.trai.ch/zerr"
)

const (
	// KindContent copies a project's sources into the target root.
	KindContent = "content"
	// KindExec runs a project's command.
	KindExec = "exec"
)

// Builtin returns a table holding the built-in project kinds.
func Builtin(executor ports.Executor) *Table {
	t := NewTable()
	// The table is empty, so registration cannot collide.
	_ = t.Register(KindContent, FactoryFunc(buildContent))
	_ = t.Register(KindExec, FactoryFunc(func(req Request) (builder.Builder, error) {
		return buildExec(executor, req)
	}))
	return t
}

// buildContent snapshots the sources under <module>/<project>. Referenced
// builders are merged into the result.
func buildContent(req Request) (builder.Builder, error) {
	p := req.Project
	dir := path.Join(p.Module().Name, p.Name)
	content := builder.NewContent(dir, req.Settings.SuiteRoot, req.Sources, dir)
	if len(req.References) == 0 {
		return content, nil
	}
	return builder.NewMerging(builder.NoTag(), append([]builder.Builder{content}, req.References...)...), nil
}

func buildExec(executor ports.Executor, req Request) (builder.Builder, error) {
	if len(req.Project.Command) == 0 {
		return nil, zerr.With(domain.ErrMissingCommand, "project", req.Project.Reference().URI)
	}
	return builder.NewExec(req.Project, executor, req.Settings.SuiteRoot, req.Sources, req.References), nil
}
