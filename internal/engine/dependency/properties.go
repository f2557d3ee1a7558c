package dependency

import (
	"slices"

	"go.trai.ch/bake/internal/core/fingerprint"
)

// Properties depends on named properties of an object, such as the command
// line of a project.
type Properties struct {
	Of    any
	Names []string
}

// Fingerprint implements Dependencies.
func (p Properties) Fingerprint() (fingerprint.Fingerprint, error) {
	fp, err := fingerprint.NewPropertyFingerprint(p.Of, slices.Clone(p.Names)...)
	if err != nil {
		return nil, err
	}
	return fp, nil
}
