// Package codec converts cache values to and from the bytes drivers store.
package codec

import "fmt"

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// ByName returns a codec for a settings-friendly name:
// "json" (default for ""), "msgpack", "cbor", "cbor-det".
// Raw and protobuf codecs depend on V and are constructed directly.
func ByName[V any](name string) (Codec[V], error) {
	switch name {
	case "", "json":
		return JSON[V]{}, nil
	case "msgpack":
		return Msgpack[V]{}, nil
	case "cbor":
		return NewCBOR[V](false)
	case "cbor-det":
		return NewCBOR[V](true)
	}
	return nil, fmt.Errorf("codec: unknown codec %q", name)
}
