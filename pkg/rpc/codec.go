package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is the gRPC content-subtype this codec is registered under.
// Clients opt in with grpc.CallContentSubtype(codecName); the server
// accepts it because init below registers the codec process-wide, next to
// grpc's default proto codec.
const codecName = "json"

// jsonCodec implements encoding.Codec by marshaling messages as JSON
// instead of protobuf wire format. The messages in this package are plain
// structs with json tags, so there is nothing runtime-generated to keep in
// sync with a .proto file.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal %T: %w", v, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpc: unmarshal into %T: %w", v, err)
	}
	return nil
}

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
