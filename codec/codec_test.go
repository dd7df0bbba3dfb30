package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uffi/protocol"
)

var shapes = map[string]any{
	"scenario": []any{int64(1), "two", []any{int64(3), int64(4)}},
	"mixed": []any{
		nil, true, false, int64(-12), 3.5, "",
		map[string]any{"name": "uffi", "tags": []any{"a", "b"}, "nested": map[string]any{"n": nil}},
	},
	"numeric strings": []any{"1", "2.5", "true", "null"},
	"empty":           []any{},
	"scalar":          "just a string",
	"awkward strings": awkwardStrings,
	"awkward keys":    []any{awkwardKeys},
	"extreme floats":  extremeFloats,
}

// awkwardStrings are strings a plain YAML scalar would not keep intact.
var awkwardStrings = []any{
	"multi\nline", "trailing\n", "\t", " ", "  padded  ", "\r\n",
	".inf", "-.inf", ".nan", "~", "yes", "no", "on", "off", "Null", "TRUE",
	"0x1F", "0o17", "012", "1e3", "1_000", "2001-12-14", "12:30",
	"- item", "key: value", "# comment", "&anchor", "*alias", "!tag", "%directive",
	"@at", "`tick`", "[x]", "{y}", `"quoted"`, "'single'", `back\slash`, "héllo ✓",
}

var awkwardKeys = map[string]any{
	"a: b": int64(1), "#": int64(2), "[k]": int64(3), "{k}": int64(4),
	"with space": int64(5), "~": int64(6), "yes": int64(7), "multi\nline": int64(8),
	"12": "twelve",
}

var extremeFloats = []any{1e300, -1e300, 1e-300, 2.5e-10, -0.1, 123456.789, math.MaxFloat64, math.SmallestNonzeroFloat64}

func TestRoundTrip(t *testing.T) {
	for _, name := range Names() {
		c, err := ByName(name)
		require.NoError(t, err)

		for shape, v := range shapes {
			t.Run(name+"/"+shape, func(t *testing.T) {
				data, err := c.Encode(v)
				require.NoError(t, err)

				got, err := c.Decode(data)
				require.NoError(t, err)
				assert.Equal(t, v, got)
			})
		}
	}
}

func TestJSONCodecRejectsMalformed(t *testing.T) {
	c := &JSONCodec{}
	for _, in := range []string{"", "not json{", `[1, 2`, `[1] [2]`} {
		_, err := c.Decode([]byte(in))
		assert.ErrorIs(t, err, protocol.ErrDecode, "input %q", in)
	}
}

func TestSonicCodecRejectsMalformed(t *testing.T) {
	_, err := newSonicCodec().Decode([]byte(`{"a":`))
	assert.ErrorIs(t, err, protocol.ErrDecode)
}

func TestYAMLCodecSingleLine(t *testing.T) {
	data, err := (&YAMLCodec{}).Encode([]any{int64(1), "two", []any{int64(3), int64(4)}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")

	data, err = (&YAMLCodec{}).Encode(awkwardStrings)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")

	_, err = (&YAMLCodec{}).Decode([]byte("  "))
	assert.ErrorIs(t, err, protocol.ErrDecode)
}

func TestNonFiniteFloatsRejected(t *testing.T) {
	for _, name := range Names() {
		c, err := ByName(name)
		require.NoError(t, err)
		for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
			_, err := c.Encode([]any{f})
			assert.Error(t, err, "%s encoding %v", name, f)
		}
	}
}

func TestYAMLFloatsKeepFraction(t *testing.T) {
	for _, f := range []float64{1e300, 1e-300, 5} {
		data, err := marshalYAMLFloat(f)
		require.NoError(t, err)
		assert.Contains(t, string(data), ".")
	}
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, CodecTypeJSON, c.Type())

	c, err = ByName("YAML")
	require.NoError(t, err)
	assert.Equal(t, CodecTypeYAML, c.Type())

	_, err = ByName("msgpack")
	assert.ErrorIs(t, err, protocol.ErrUnknownCodec)

	assert.Equal(t, "sonic", GetCodec(CodecTypeSonic).Name())
	assert.Equal(t, "json", GetCodec(CodecType(9)).Name())
}
