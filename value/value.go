// Package value normalises test case values so that catalog data and the
// output of a submission can be compared by value.
//
// Numbers decoded from YAML or JSON arrive as a mix of int64, uint64 and
// float64. Normalize folds every integral number into int so the same
// logical value always has the same dynamic type.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// Normalize returns a deep copy of v with canonical element types.
// Slices and arrays become []any and string keyed maps become map[string]any.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool, string:
		return t
	case int:
		return t
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint:
		return normalizeUint(uint64(t))
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case uint64:
		return normalizeUint(t)
	case float32:
		return normalizeFloat(float64(t))
	case float64:
		return normalizeFloat(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Normalize(iter.Value().Interface())
		}
		return out
	}
	return v
}

// normalizeUint keeps values above the int range as float64
func normalizeUint(u uint64) any {
	if u > math.MaxInt {
		return float64(u)
	}
	return int(u)
}

func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}

// FromJSON converts an arbitrary Go value into its normalised form by
// encoding it as JSON first. Values implementing json.Marshaler (such as
// the tracking container) are flattened this way.
func FromJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value: encode output: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("value: decode output: %w", err)
	}
	return Normalize(out), nil
}

// Into converts a normalised value into a new value of type t
func Into(v any, t reflect.Type) (reflect.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(b, ptr.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("value: cannot use %s as %s: %w", b, t, err)
	}
	return ptr.Elem(), nil
}

// Equal reports whether a and b hold the same value after normalisation
func Equal(a, b any) bool {
	return cmp.Equal(Normalize(a), Normalize(b))
}

// Diff returns a human readable difference, empty when equal
func Diff(expected, actual any) string {
	return cmp.Diff(Normalize(expected), Normalize(actual))
}
