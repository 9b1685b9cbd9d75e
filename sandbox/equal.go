package sandbox

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jonwraymond/doctest/runtime"
)

var equalOptions = []cmp.Option{
	cmpopts.EquateNaNs(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// DeepEqual reports a strict structural mismatch between actual and
// expected as an *AssertionError. Numbers compare by value regardless of
// their Go type, and runtime.JSON values compare by their decoded content.
func DeepEqual(actual, expected any) error {
	a, e := normalize(actual), normalize(expected)
	if cmp.Equal(a, e, equalOptions...) {
		return nil
	}
	return &AssertionError{
		Message: fmt.Sprintf("Expected values to be strictly deep-equal:\n%s !== %s",
			formatValue(actual), formatValue(expected)),
		Diff: "(-expected +actual):\n" + cmp.Diff(e, a, equalOptions...),
	}
}

// FormatArgs renders console arguments separated by spaces. Strings are
// printed verbatim and other values as JSON.
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, v := range args {
		parts[i] = formatValue(v)
	}
	return strings.Join(parts, " ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case runtime.JSON:
		return string(val)
	case float64:
		switch {
		case math.IsNaN(val):
			return "NaN"
		case math.IsInf(val, 1):
			return "Infinity"
		case math.IsInf(val, -1):
			return "-Infinity"
		}
	}
	if v == runtime.Undefined {
		return "undefined"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// decodeJSON decodes a serialized object, falling back to its text.
func decodeJSON(val runtime.JSON) any {
	var out any
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return string(val)
	}
	return out
}

// normalize recursively converts a value into comparable shapes:
// map[string]any, []any, float64, string, bool and nil.
func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case runtime.JSON:
		return normalize(decodeJSON(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = normalize(v)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = normalize(v)
		}
		return out
	case string, bool, float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	}
	if v == runtime.Undefined {
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	}
	return v
}
