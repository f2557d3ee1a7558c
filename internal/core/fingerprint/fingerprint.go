// Package fingerprint captures value snapshots of dependency state.
//
// A Fingerprint is compared by value: two fingerprints are equal iff the
// canonical encodings of their protocols are byte-equal. Every fingerprint
// can be reduced to a plain-data Protocol and rebuilt from it.
package fingerprint

import (
	"bytes"

	"go.trai.ch/zerr"
)

var (
	// ErrUnknownProperty is returned when a tracked property does not exist on the object.
	ErrUnknownProperty = zerr.New("unknown property")

	// ErrUnsupportedObject is returned when properties cannot be read from an object.
	ErrUnsupportedObject = zerr.New("properties can only be read from structs and string-keyed maps")

	// ErrUnknownKind is returned when a protocol carries an unknown fingerprint kind.
	ErrUnknownKind = zerr.New("unknown fingerprint kind")

	// ErrPathStatFailed is returned when a path exists but cannot be inspected.
	ErrPathStatFailed = zerr.New("failed to stat path")
)

// Fingerprint is an immutable snapshot of a dependency's state.
type Fingerprint interface {
	// Protocol returns the serializable form of the fingerprint.
	Protocol() Protocol
	// Equal reports whether both fingerprints capture the same state.
	Equal(other Fingerprint) bool
}

// Equal compares two fingerprints by their canonical encoding.
// A nil fingerprint only equals another nil fingerprint.
func Equal(a, b Fingerprint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return bytes.Equal(a.Protocol().Canonical(), b.Protocol().Canonical())
}
