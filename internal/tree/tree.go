// Package tree holds the structural helpers behind the form value store:
// deep clone, deep equality and in-place reconciliation of value trees.
package tree

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// Clone returns a deep copy of v sharing no mutable state with it.
// map[string]any and []any are copied recursively, typed slices and
// string-keyed maps are normalized to []any and map[string]any, scalars are
// returned as is, and any other composite value (structs, pointers) is copied
// through a JSON round trip.
func Clone(v any) any {
	switch t := v.(type) {
	case nil, bool, string, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = Clone(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = Clone(vv)
		}
		return out
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Float32, reflect.Float64:
		return v
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Clone(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			if rv.IsNil() {
				return nil
			}
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = Clone(iter.Value().Interface())
			}
			return out
		}
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return v
	}
	return cloneJSON(v)
}

// CloneMap clones a root tree; a nil root yields an empty map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return Clone(m).(map[string]any)
}

func cloneJSON(v any) any {
	b, err := gojson.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := gojson.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// Equal reports structural equality: sequences element-wise, maps by key set
// and per-key recursion, numbers by numeric value regardless of Go type.
func Equal(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && (fa == fb || (math.IsNaN(fa) && math.IsNaN(fb)))
	}
	switch ta := a.(type) {
	case nil:
		return b == nil
	case map[string]any:
		tb, ok := b.(map[string]any)
		if !ok && b != nil {
			tb, ok = Clone(b).(map[string]any)
		}
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, va := range ta {
			vb, ok := tb[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := asSlice(b)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !Equal(ta[i], tb[i]) {
				return false
			}
		}
		return true
	}
	ra := reflect.ValueOf(a)
	switch ra.Kind() {
	case reflect.Slice, reflect.Array:
		if sa, ok := asSlice(a); ok {
			return Equal(sa, b)
		}
	case reflect.Map:
		if ma, ok := Clone(a).(map[string]any); ok {
			return Equal(ma, b)
		}
	case reflect.String:
		rb := reflect.ValueOf(b)
		return b != nil && rb.Kind() == reflect.String && ra.String() == rb.String()
	}
	return reflect.DeepEqual(a, b)
}

func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// number converts any Go numeric value (or json.Number) to float64.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Number exposes the numeric conversion used by Equal.
func Number(v any) (float64, bool) { return number(v) }

// ReplaceInPlace reconciles target with source without replacing target
// itself: keys missing from source are deleted, nested maps are reconciled
// recursively, everything else is assigned a clone of the source value.
func ReplaceInPlace(target, source map[string]any) {
	for k := range target {
		if _, ok := source[k]; !ok {
			delete(target, k)
		}
	}
	for k, sv := range source {
		if sm, ok := sv.(map[string]any); ok {
			if tm, ok := target[k].(map[string]any); ok {
				ReplaceInPlace(tm, sm)
				continue
			}
		}
		target[k] = Clone(sv)
	}
}
