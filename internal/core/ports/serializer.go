package ports

import "io"

// Serializer encodes values to and decodes values from a byte stream.
//
//go:generate mockgen -source=serializer.go -destination=mocks/mock_serializer.go -package=mocks
type Serializer interface {
	// Name identifies the wire format (e.g. "msgpack").
	Name() string
	// Serialize writes the encoded form of v to w.
	Serialize(w io.Writer, v any) error
	// Deserialize decodes the next value from r into v, which must be a pointer.
	Deserialize(r io.Reader, v any) error
}

// Deserialize decodes a value of type T from r.
func Deserialize[T any](s Serializer, r io.Reader) (T, error) {
	var v T
	err := s.Deserialize(r, &v)
	return v, err
}
