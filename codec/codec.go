// Package codec provides the structured-text encodings used for call
// arguments and results.
//
// Every codec turns a generic value (see package message) into text and back.
// Decode always returns normalized values, so callers never see the
// library-specific number or map types.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"uffi/protocol"
)

type CodecType byte

const (
	CodecTypeJSON  CodecType = 0
	CodecTypeYAML  CodecType = 1
	CodecTypeSonic CodecType = 2
)

// Codec encodes and decodes a single structured value.
type Codec interface {
	Encode(v any) ([]byte, error)
	// Decode parses data and returns the normalized value it holds.
	Decode(data []byte) (any, error)
	Type() CodecType
	// Name is the identifier carried in the UFFI_CODEC environment variable.
	Name() string
}

// Default is the codec used when nothing else is configured.
const Default = "json"

// GetCodec returns the codec for codecType, falling back to JSON.
func GetCodec(codecType CodecType) Codec {
	switch codecType {
	case CodecTypeYAML:
		return &YAMLCodec{}
	case CodecTypeSonic:
		return newSonicCodec()
	default:
		return &JSONCodec{}
	}
}

// ByName looks a codec up by its name. An empty name selects Default.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return &JSONCodec{}, nil
	case "yaml", "yml":
		return &YAMLCodec{}, nil
	case "sonic":
		return newSonicCodec(), nil
	}
	return nil, fmt.Errorf("%w: %q", protocol.ErrUnknownCodec, name)
}

// Names lists the registered codec names.
func Names() []string {
	return []string{"json", "yaml", "sonic"}
}

var errEmpty = errors.New("empty message")

func decodeError(c Codec, err error) error {
	return fmt.Errorf("%w: %s: %w", protocol.ErrDecode, c.Name(), err)
}
