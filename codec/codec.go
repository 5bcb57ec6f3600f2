// Package codec turns memoized values into bytes and back for providers that
// only hold []byte (e.g. provider/bigcache). In-process providers keep values
// as-is and never need a codec.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
