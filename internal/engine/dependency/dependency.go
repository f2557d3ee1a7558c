// Package dependency describes what a builder depends on.
//
// Every Dependencies value computes a fresh fingerprint on each call; nothing
// is cached, because the observed world may change between builder
// constructions.
package dependency

import (
	"errors"
	"slices"

	"go.trai.ch/bake/internal/core/fingerprint"
)

// Dependencies produces a fingerprint of the current state a builder depends on.
type Dependencies interface {
	Fingerprint() (fingerprint.Fingerprint, error)
}

// NoDependencies has no external invalidation source. Its fingerprint is the
// empty set, so it is always equal to the last recorded one.
type NoDependencies struct{}

// Fingerprint implements Dependencies.
func (NoDependencies) Fingerprint() (fingerprint.Fingerprint, error) {
	return fingerprint.NewCombined(), nil
}

// Multiple combines child dependencies into one set.
type Multiple struct {
	children []Dependencies
}

// NewMultiple combines children. Nil children are ignored.
func NewMultiple(children ...Dependencies) *Multiple {
	return &Multiple{children: slices.DeleteFunc(slices.Clone(children), func(d Dependencies) bool { return d == nil })}
}

// Fingerprint implements Dependencies.
func (m *Multiple) Fingerprint() (fingerprint.Fingerprint, error) {
	fps := make([]fingerprint.Fingerprint, 0, len(m.children))
	var errs error
	for _, c := range m.children {
		fp, err := c.Fingerprint()
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		fps = append(fps, fp)
	}
	if errs != nil {
		return nil, errs
	}
	return fingerprint.NewCombined(fps...), nil
}

// Children returns the combined dependencies.
func (m *Multiple) Children() []Dependencies {
	return slices.Clone(m.children)
}
