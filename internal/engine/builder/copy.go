package builder

import (
	"context"
	"path"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/engine/dependency"
)

// CopyResult copies another builder's outputs to a target-relative location.
type CopyResult struct {
	source   Builder
	location string
}

// NewCopyResult creates a builder copying the outputs of source below location.
func NewCopyResult(source Builder, location string) *CopyResult {
	return &CopyResult{source: source, location: path.Clean(location)}
}

// Key implements Builder.
func (c *CopyResult) Key() Key {
	return NewKey("copy", c.source.UID(), c.location)
}

// UID implements Builder.
func (c *CopyResult) UID() string { return c.Key().UID() }

// Dependencies implements Builder.
func (c *CopyResult) Dependencies() dependency.Dependencies {
	return dependency.Subtask{Of: c.source}
}

// Prerequisites implements Builder.
func (c *CopyResult) Prerequisites() []Builder { return []Builder{c.source} }

// AddToContext implements Builder.
func (c *CopyResult) AddToContext(bc Context) error { return Register(bc, c) }

// CanRun implements Builder.
func (c *CopyResult) CanRun() bool { return true }

// Run implements Builder.
func (c *CopyResult) Run(ctx context.Context, bc Context) (domain.OutputSet, error) {
	res, err := bc.GetResults(c.source)
	if err != nil {
		return nil, err
	}

	settings := bc.Settings()
	jobs := make([]copyJob, len(res))
	outputs := make([]string, len(res))
	for i, p := range res {
		outputs[i] = path.Join(c.location, p)
		jobs[i] = copyJob{from: settings.TargetPath(p), to: settings.TargetPath(outputs[i])}
	}
	if err := copyFiles(ctx, jobs); err != nil {
		return nil, err
	}
	return domain.NewOutputSet(outputs...), nil
}
