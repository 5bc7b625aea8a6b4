package api

import (
	"connectrpc.com/connect"
	"github.com/goccy/go-json"
)

// jsonCodec encodes plain Go messages. It replaces connect's protobuf JSON codec under
// the same name, so the Connect protocol's application/json content type still applies.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// WithJSONCodec configures a handler or client to use the housesplit JSON codec.
func WithJSONCodec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
