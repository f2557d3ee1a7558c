package fingerprint

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// Kind tags the fingerprint variant a Protocol was produced by.
type Kind string

const (
	// KindProperty identifies property fingerprints.
	KindProperty Kind = "property"
	// KindCombined identifies combined fingerprints.
	KindCombined Kind = "combined"
	// KindPathState identifies path-state fingerprints.
	KindPathState Kind = "path-state"
)

// Property is one captured (name, type, value) triple.
type Property struct {
	Name  string `json:"name" msgpack:"name"`
	Type  string `json:"type" msgpack:"type"`
	Value string `json:"value" msgpack:"value"`
}

// Protocol is the plain-data form of a fingerprint. Only the fields relevant
// to Kind are populated.
type Protocol struct {
	Kind       Kind       `json:"kind" msgpack:"kind"`
	Properties []Property `json:"properties,omitempty" msgpack:"properties,omitempty"`
	Children   []Protocol `json:"children,omitempty" msgpack:"children,omitempty"`
	Path       string     `json:"path,omitzero" msgpack:"path,omitempty"`
	Exists     bool       `json:"exists,omitzero" msgpack:"exists,omitempty"`
	ModTime    int64      `json:"mod_time,omitzero" msgpack:"mod_time,omitempty"`
	Size       int64      `json:"size,omitzero" msgpack:"size,omitempty"`
}

// CreateFingerprint rebuilds the fingerprint described by the protocol.
func (p Protocol) CreateFingerprint() (Fingerprint, error) {
	switch p.Kind {
	case KindProperty:
		return newPropertyFingerprint(slices.Clone(p.Properties)), nil
	case KindCombined:
		children := make([]Fingerprint, 0, len(p.Children))
		for _, c := range p.Children {
			f, err := c.CreateFingerprint()
			if err != nil {
				return nil, err
			}
			children = append(children, f)
		}
		return NewCombined(children...), nil
	case KindPathState:
		return &PathStateFingerprint{
			path:    p.Path,
			exists:  p.Exists,
			modTime: p.ModTime,
			size:    p.Size,
		}, nil
	default:
		return nil, zerr.With(ErrUnknownKind, "kind", string(p.Kind))
	}
}

// Canonical returns a deterministic byte encoding of the protocol. Property
// order and child order do not influence the result, and duplicate children
// collapse.
func (p Protocol) Canonical() []byte {
	var buf bytes.Buffer
	p.writeCanonical(&buf)
	return buf.Bytes()
}

// Digest returns the xxhash of the canonical encoding as hex.
func (p Protocol) Digest() string {
	return fmt.Sprintf("%016x", xxhash.Sum64(p.Canonical()))
}

func (p Protocol) writeCanonical(buf *bytes.Buffer) {
	writeString(buf, string(p.Kind))

	switch p.Kind {
	case KindProperty:
		props := slices.Clone(p.Properties)
		slices.SortFunc(props, func(a, b Property) int { return strings.Compare(a.Name, b.Name) })
		writeUvarint(buf, uint64(len(props)))
		for _, prop := range props {
			writeString(buf, prop.Name)
			writeString(buf, prop.Type)
			writeString(buf, prop.Value)
		}
	case KindCombined:
		children := make([][]byte, 0, len(p.Children))
		for _, c := range p.Children {
			children = append(children, c.Canonical())
		}
		slices.SortFunc(children, bytes.Compare)
		children = slices.CompactFunc(children, bytes.Equal)
		writeUvarint(buf, uint64(len(children)))
		for _, c := range children {
			writeUvarint(buf, uint64(len(c)))
			buf.Write(c)
		}
	case KindPathState:
		writeString(buf, p.Path)
		if !p.Exists {
			buf.WriteByte(0)
			return
		}
		buf.WriteByte(1)
		writeVarint(buf, p.ModTime)
		writeVarint(buf, p.Size)
	}
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	buf.Write(binary.AppendUvarint(nil, v))
}

func writeVarint(buf *bytes.Buffer, v int64) {
	buf.Write(binary.AppendVarint(nil, v))
}
