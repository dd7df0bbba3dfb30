package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"uffi/message"
)

// JSONCodec uses Go's standard library encoding/json for serialization.
// Numbers are decoded with UseNumber so integers keep their exact value.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, decodeError(c, err)
	}
	// A message holds exactly one value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, decodeError(c, errors.New("trailing data after value"))
	}
	return message.Normalize(v), nil
}

func (c *JSONCodec) Type() CodecType {
	return CodecTypeJSON
}

func (c *JSONCodec) Name() string {
	return "json"
}
