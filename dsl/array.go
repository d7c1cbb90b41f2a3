package dsl

import (
	"context"
	"reflect"

	"github.com/reoring/goform"
	"github.com/reoring/goform/fieldpath"
	js "github.com/reoring/goform/jsonschema"
)

// ArraySchema validates every element with elem and the length with Min/Max.
type ArraySchema struct {
	elem       Node
	min, max   *int
	minR, maxR rule
}

// Array returns a schema for sequences of elem.
func Array(elem Node) *ArraySchema { return &ArraySchema{elem: elem} }

// Min requires at least n elements.
func (s *ArraySchema) Min(n int, msg ...string) *ArraySchema {
	s.min = &n
	s.minR = rule{code: goform.CodeTooShort, params: map[string]any{"min": n}, msg: firstMsg(msg)}
	return s
}

// Max allows at most n elements.
func (s *ArraySchema) Max(n int, msg ...string) *ArraySchema {
	s.max = &n
	s.maxR = rule{code: goform.CodeTooLong, params: map[string]any{"max": n}, msg: firstMsg(msg)}
	return s
}

func (s *ArraySchema) Parse(ctx context.Context, v any) (any, error) { return parseRoot(ctx, s, v) }

func (s *ArraySchema) parseAt(ctx context.Context, v any, at fieldpath.Path) (any, goform.Issues) {
	items, ok := sliceOf(v)
	if !ok {
		return nil, goform.Issues{typeIssue(at, "array")}
	}
	var iss goform.Issues
	if s.min != nil && len(items) < *s.min {
		iss = append(iss, s.minR.issue(at))
	}
	if s.max != nil && len(items) > *s.max {
		iss = append(iss, s.maxR.issue(at))
	}
	out := make([]any, len(items))
	for i, it := range items {
		pv, sub := s.elem.parseAt(ctx, it, at.Index(i))
		out[i] = pv
		iss = append(iss, sub...)
	}
	return out, iss
}

func (s *ArraySchema) onMissing() (any, bool, bool) { return nil, false, true }

func (s *ArraySchema) JSONSchema() *js.Schema {
	return &js.Schema{Type: "array", Items: s.elem.JSONSchema(), MinItems: s.min, MaxItems: s.max}
}

func sliceOf(v any) ([]any, bool) {
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
