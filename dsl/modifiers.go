package dsl

import (
	"context"

	"github.com/reoring/goform"
	"github.com/reoring/goform/fieldpath"
	"github.com/reoring/goform/internal/tree"
	js "github.com/reoring/goform/jsonschema"
)

type optionalNode struct{ inner Node }

// Optional lets an enclosing object omit the key. A present value is still
// validated by n.
func Optional(n Node) Node { return optionalNode{inner: n} }

func (o optionalNode) Parse(ctx context.Context, v any) (any, error) { return parseRoot(ctx, o, v) }
func (o optionalNode) parseAt(ctx context.Context, v any, at fieldpath.Path) (any, goform.Issues) {
	return o.inner.parseAt(ctx, v, at)
}
func (o optionalNode) onMissing() (any, bool, bool) { return nil, false, false }
func (o optionalNode) JSONSchema() *js.Schema     { return o.inner.JSONSchema() }

type nullableNode struct{ inner Node }

// Nullable accepts nil in addition to what n accepts.
func Nullable(n Node) Node { return nullableNode{inner: n} }

func (o nullableNode) Parse(ctx context.Context, v any) (any, error) { return parseRoot(ctx, o, v) }
func (o nullableNode) parseAt(ctx context.Context, v any, at fieldpath.Path) (any, goform.Issues) {
	if v == nil {
		return nil, nil
	}
	return o.inner.parseAt(ctx, v, at)
}
func (o nullableNode) onMissing() (any, bool, bool) { return o.inner.onMissing() }
func (o nullableNode) JSONSchema() *js.Schema {
	s := o.inner.JSONSchema()
	if t, ok := s.Type.(string); ok {
		s.Type = []string{t, "null"}
	}
	return s
}

type defaultNode struct {
	inner Node
	def   any
}

// Default substitutes v when an enclosing object lacks the key.
func Default(n Node, v any) Node { return defaultNode{inner: n, def: tree.Clone(v)} }

func (o defaultNode) Parse(ctx context.Context, v any) (any, error) { return parseRoot(ctx, o, v) }
func (o defaultNode) parseAt(ctx context.Context, v any, at fieldpath.Path) (any, goform.Issues) {
	return o.inner.parseAt(ctx, v, at)
}
func (o defaultNode) onMissing() (any, bool, bool) { return o.def, true, false }
func (o defaultNode) JSONSchema() *js.Schema {
	s := o.inner.JSONSchema()
	s.Default = o.def
	return s
}
