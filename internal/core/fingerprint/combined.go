package fingerprint

// CombinedFingerprint is an unordered set of child fingerprints.
type CombinedFingerprint struct {
	children []Fingerprint
}

// NewCombined returns the set of the given fingerprints. Nil children are
// ignored; order and duplicates do not affect equality.
func NewCombined(children ...Fingerprint) *CombinedFingerprint {
	kept := make([]Fingerprint, 0, len(children))
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &CombinedFingerprint{children: kept}
}

// Protocol implements Fingerprint.
func (f *CombinedFingerprint) Protocol() Protocol {
	children := make([]Protocol, len(f.children))
	for i, c := range f.children {
		children[i] = c.Protocol()
	}
	return Protocol{
		Kind:     KindCombined,
		Children: children,
	}
}

// Equal implements Fingerprint.
func (f *CombinedFingerprint) Equal(other Fingerprint) bool {
	return Equal(f, other)
}

// Len returns the number of children, including duplicates.
func (f *CombinedFingerprint) Len() int {
	return len(f.children)
}
