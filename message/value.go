package message

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Normalize converts a decoded value into the canonical value model.
//
// Integral numbers become int64 and all other numbers float64, so 2.0 and 2
// both come back as int64(2). Sequences become []any and mappings
// map[string]any; non-string mapping keys are rendered with fmt. Values of
// any other type are returned as is.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, bool, string:
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return normalizeFloat(f)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return normalizeUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return normalizeUint(x)
	case float32:
		return normalizeFloat(float64(x))
	case float64:
		return normalizeFloat(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

// NormalizeList normalizes every element of a decoded argument list.
func NormalizeList(v any) ([]any, error) {
	list, ok := Normalize(v).([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of arguments, got %T", v)
	}
	return list, nil
}

func normalizeUint(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return f
}

// Stringify returns the positional command-line form of a value.
// Strings are passed verbatim; everything else is rendered as compact JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
