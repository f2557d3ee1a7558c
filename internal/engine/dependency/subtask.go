package dependency

import "go.trai.ch/bake/internal/core/fingerprint"

// Dependent is anything that exposes its own dependencies, typically a builder.
type Dependent interface {
	Dependencies() Dependencies
}

// Subtask folds another builder's dependencies into a composite's fingerprint.
type Subtask struct {
	Of Dependent
}

// Fingerprint implements Dependencies.
func (s Subtask) Fingerprint() (fingerprint.Fingerprint, error) {
	return s.Of.Dependencies().Fingerprint()
}
