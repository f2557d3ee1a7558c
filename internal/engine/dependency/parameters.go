package dependency

import (
	"maps"
	"slices"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/fingerprint"
)

// blockKey and presentKey are reserved property names. Parameter keys are
// plain identifiers and never start with '@'.
const (
	blockKey   = "@block"
	presentKey = "@present"
)

// ParameterScope resolves named parameter blocks, applying inheritance from
// enclosing scopes.
type ParameterScope interface {
	ParameterBlock(name string) (domain.Parameters, bool)
}

// Parameters depends on the resolved content of a named parameter block.
type Parameters struct {
	Name  string
	Scope ParameterScope
}

// Fingerprint implements Dependencies.
func (p Parameters) Fingerprint() (fingerprint.Fingerprint, error) {
	block, ok := p.Scope.ParameterBlock(p.Name)

	state := make(map[string]any, len(block)+2)
	maps.Copy(state, block)
	state[blockKey] = p.Name
	state[presentKey] = ok

	fp, err := fingerprint.NewPropertyFingerprint(state, slices.Collect(maps.Keys(state))...)
	if err != nil {
		return nil, err
	}
	return fp, nil
}
