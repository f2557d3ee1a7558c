// Package serializer provides the wire formats of persisted cache entries.
package serializer

import (
	"io"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Msgpack is the compact binary format used by default.
type Msgpack struct{}

var _ ports.Serializer = Msgpack{}

// Name implements ports.Serializer.
func (Msgpack) Name() string { return domain.FormatMsgpack }

// Serialize implements ports.Serializer. Map keys are sorted so equal values
// encode to equal bytes.
func (Msgpack) Serialize(w io.Writer, v any) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSerializeFailed.Error()), "format", domain.FormatMsgpack)
	}
	return nil
}

// Deserialize implements ports.Serializer.
func (Msgpack) Deserialize(r io.Reader, v any) error {
	if err := msgpack.NewDecoder(r).Decode(v); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDeserializeFailed.Error()), "format", domain.FormatMsgpack)
	}
	return nil
}

// JSON is a human-readable format, useful when inspecting the cache by hand.
type JSON struct{}

var _ ports.Serializer = JSON{}

// Name implements ports.Serializer.
func (JSON) Name() string { return domain.FormatJSON }

// Serialize implements ports.Serializer.
func (JSON) Serialize(w io.Writer, v any) error {
	err := jsonv2.MarshalWrite(w, v, jsonv2.Deterministic(true), jsontext.WithIndent("  "), jsontext.SpaceAfterColon(true))
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSerializeFailed.Error()), "format", domain.FormatJSON)
	}
	return nil
}

// Deserialize implements ports.Serializer.
func (JSON) Deserialize(r io.Reader, v any) error {
	if err := jsonv2.UnmarshalRead(r, v); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDeserializeFailed.Error()), "format", domain.FormatJSON)
	}
	return nil
}

// ForFormat returns the serializer registered under format.
func ForFormat(format string) (ports.Serializer, error) {
	switch format {
	case domain.FormatMsgpack:
		return Msgpack{}, nil
	case domain.FormatJSON:
		return JSON{}, nil
	default:
		return nil, zerr.With(domain.ErrUnknownSerializer, "format", format)
	}
}
