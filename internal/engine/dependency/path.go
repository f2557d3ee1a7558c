package dependency

import (
	"slices"

	"go.trai.ch/bake/internal/core/fingerprint"
)

// Path depends on the state of a single root-relative path.
type Path struct {
	Root string
	Rel  string
}

// Fingerprint implements Dependencies.
func (p Path) Fingerprint() (fingerprint.Fingerprint, error) {
	fp, err := fingerprint.NewPathState(p.Root, p.Rel)
	if err != nil {
		return nil, err
	}
	return fp, nil
}

// SourceSet depends on the state of a fixed set of root-relative paths.
type SourceSet struct {
	Root  string
	Paths []string
}

// Fingerprint implements Dependencies.
func (s SourceSet) Fingerprint() (fingerprint.Fingerprint, error) {
	fps := make([]fingerprint.Fingerprint, 0, len(s.Paths))
	for _, rel := range slices.Sorted(slices.Values(s.Paths)) {
		fp, err := fingerprint.NewPathState(s.Root, rel)
		if err != nil {
			return nil, err
		}
		fps = append(fps, fp)
	}
	return fingerprint.NewCombined(fps...), nil
}
