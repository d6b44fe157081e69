package wire

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
)

const bytesType = protowire.BytesType

// CodecName is registered as the content subtype. It matches the name used by
// generated protobuf clients so nodes see an ordinary application/grpc+proto call.
const CodecName = "proto"

// Codec is a gRPC codec for Message values. It must be forced on the
// connection (grpc.ForceCodec / grpc.ForceServerCodec) rather than registered
// globally, since it only understands this package's messages.
type Codec struct{}

var _ encoding.Codec = Codec{}

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("wire: cannot marshal %T", v)
	}
	return m.MarshalWire()
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("wire: cannot unmarshal into %T", v)
	}
	return m.UnmarshalWire(data)
}

func (Codec) Name() string { return CodecName }
