package codec

import "google.golang.org/protobuf/proto"

// Proto stores protobuf messages in their binary wire form.
type Proto[M proto.Message] struct {
	newMsg func() M
}

// NewProto needs a constructor for an empty message, e.g.
// func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }.
func NewProto[M proto.Message](newMsg func() M) Proto[M] {
	return Proto[M]{newMsg: newMsg}
}

func (p Proto[M]) Encode(m M) ([]byte, error) { return proto.Marshal(m) }

func (p Proto[M]) Decode(b []byte) (M, error) {
	m := p.newMsg()
	if err := proto.Unmarshal(b, m); err != nil {
		var zero M
		return zero, err
	}
	return m, nil
}
