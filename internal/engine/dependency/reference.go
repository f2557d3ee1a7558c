package dependency

import (
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/fingerprint"
)

// Reference depends on the identity of a module or project.
type Reference struct {
	Ref domain.Reference
}

// Fingerprint implements Dependencies.
func (r Reference) Fingerprint() (fingerprint.Fingerprint, error) {
	fp, err := fingerprint.NewPropertyFingerprint(r.Ref, "URI", "Kind")
	if err != nil {
		return nil, err
	}
	return fp, nil
}
