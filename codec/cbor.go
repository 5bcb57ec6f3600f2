package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR encodes with fxamacker/cbor. Build it with NewCBOR; the zero value has
// no modes and will panic.
type CBOR[V any] struct {
	em cbor.EncMode
	dm cbor.DecMode
}

var _ Codec[int] = CBOR[int]{}

// NewCBOR returns a CBOR codec. canonical selects RFC 8949 core deterministic
// encoding (sorted map keys, shortest forms), which is what you want when the
// bytes are hashed. Times are written as RFC3339Nano either way.
func NewCBOR[V any](canonical bool) (CBOR[V], error) {
	opts := cbor.PreferredUnsortedEncOptions()
	if canonical {
		opts = cbor.CoreDetEncOptions()
	}
	opts.Time = cbor.TimeRFC3339Nano

	em, err := opts.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{em: em, dm: dm}, nil
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.em.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dm.Unmarshal(b, &v)
	return v, err
}
