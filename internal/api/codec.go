// Package api defines the tripauth.v1.AuthService gRPC contract. Messages
// are plain Go structs carried by a JSON codec registered under the
// "json" content subtype, so browsers behind a gRPC-web proxy and the CLI
// share the same payloads.
package api

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype both ends must use.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
