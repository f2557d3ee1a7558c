package builder

import (
	"context"
	"path"
	"path/filepath"
	"slices"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/engine/dependency"
)

// Content materializes a fixed snapshot of suite sources under the target
// root.
type Content struct {
	name    string
	sources []string
	dest    string
	root    string
}

// NewContent creates a content builder named name that copies the
// suite-relative sources found under root to dest, a target-relative
// directory.
func NewContent(name, root string, sources []string, dest string) *Content {
	return &Content{
		name:    name,
		sources: slices.Compact(slices.Sorted(slices.Values(sources))),
		dest:    path.Clean(dest),
		root:    root,
	}
}

// Key implements Builder.
func (c *Content) Key() Key {
	return NewKey("content", append([]string{c.name, c.dest}, c.sources...)...)
}

// UID implements Builder.
func (c *Content) UID() string { return c.Key().UID() }

// Sources returns the suite-relative snapshot.
func (c *Content) Sources() []string { return slices.Clone(c.sources) }

// Dependencies implements Builder.
func (c *Content) Dependencies() dependency.Dependencies {
	return dependency.SourceSet{Root: c.root, Paths: c.sources}
}

// Prerequisites implements Builder.
func (c *Content) Prerequisites() []Builder { return nil }

// AddToContext implements Builder.
func (c *Content) AddToContext(bc Context) error { return Register(bc, c) }

// CanRun implements Builder.
func (c *Content) CanRun() bool { return true }

// Run implements Builder.
func (c *Content) Run(ctx context.Context, bc Context) (domain.OutputSet, error) {
	settings := bc.Settings()
	jobs := make([]copyJob, len(c.sources))
	outputs := make([]string, len(c.sources))
	for i, src := range c.sources {
		outputs[i] = path.Join(c.dest, src)
		jobs[i] = copyJob{
			from: filepath.Join(c.root, filepath.FromSlash(src)),
			to:   settings.TargetPath(outputs[i]),
		}
	}
	if err := copyFiles(ctx, jobs); err != nil {
		return nil, err
	}
	return domain.NewOutputSet(outputs...), nil
}
