package codec

import (
	"errors"
	"fmt"
)

var ErrTooLarge = errors.New("codec: payload too large")

// Limit rejects payloads above Max bytes in both directions, so a memoized
// result that would blow a byte store's entry size is refused up front.
// Max <= 0 disables the check.
type Limit[V any] struct {
	Inner Codec[V]
	Max   int
}

func (l Limit[V]) Encode(v V) ([]byte, error) {
	b, err := l.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if l.Max > 0 && len(b) > l.Max {
		return nil, fmt.Errorf("%w: encoded %d > %d", ErrTooLarge, len(b), l.Max)
	}
	return b, nil
}

func (l Limit[V]) Decode(b []byte) (V, error) {
	if l.Max > 0 && len(b) > l.Max {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), l.Max)
	}
	return l.Inner.Decode(b)
}
