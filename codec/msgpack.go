package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack serializes with vmihailenco/msgpack/v5; the zero value is ready.
// Field names follow `msgpack:"..."` tags, not json tags.
type Msgpack[V any] struct{}

func (Msgpack[V]) Encode(v V) ([]byte, error) { return msgpack.Marshal(v) }

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return v, err
	}
	return v, nil
}
