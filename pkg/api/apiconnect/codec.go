// Package apiconnect wires the cashflow services to the Connect protocol:
// procedure names, handler constructors and typed clients.
package apiconnect

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Codec marshals plain Go messages as JSON. It registers under the name
// "json", so requests carry Content-Type application/json.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
