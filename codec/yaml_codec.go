package codec

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"uffi/message"
)

// YAMLCodec encodes values as single-line flow YAML.
//
// Every string is double quoted so reserved words (~, yes, .inf),
// whitespace-only and multi-line strings read back as the same string.
// Floats always carry a '.' because the decoder reads "1e+300" as a string.
type YAMLCodec struct{}

var yamlEncodeOptions = []yaml.EncodeOption{
	yaml.JSON(),
	yaml.CustomMarshaler[float64](marshalYAMLFloat),
}

func marshalYAMLFloat(f float64) ([]byte, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("yaml: unsupported value: %v", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.Contains(s, ".") {
		if i := strings.IndexByte(s, 'e'); i >= 0 {
			s = s[:i] + ".0" + s[i:]
		} else {
			s += ".0"
		}
	}
	return []byte(s), nil
}

func (c *YAMLCodec) Encode(v any) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(v, yamlEncodeOptions...)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(out, "\n"), nil
}

func (c *YAMLCodec) Decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, decodeError(c, errEmpty)
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, decodeError(c, err)
	}
	return message.Normalize(v), nil
}

func (c *YAMLCodec) Type() CodecType {
	return CodecTypeYAML
}

func (c *YAMLCodec) Name() string {
	return "yaml"
}
