package dsl

import (
	"context"
	"sort"

	"github.com/reoring/goform"
	"github.com/reoring/goform/fieldpath"
	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/internal/tree"
	js "github.com/reoring/goform/jsonschema"
)

// UnknownPolicy decides what happens to keys an object does not declare.
type UnknownPolicy int

const (
	// UnknownStrip drops undeclared keys from the parsed value (default).
	UnknownStrip UnknownPolicy = iota
	// UnknownStrict reports each undeclared key as an unknown_key issue.
	UnknownStrict
	// UnknownPassthrough copies undeclared keys through unchanged.
	UnknownPassthrough
)

// ObjectSchema validates a map[string]any field by field. All issues are
// collected; parsing never stops at the first one.
type ObjectSchema struct {
	names   []string
	fields  map[string]Node
	unknown UnknownPolicy
	refines []func(context.Context, map[string]any) goform.Issues
}

// Object returns an empty object schema with the Strip policy.
func Object() *ObjectSchema {
	return &ObjectSchema{fields: map[string]Node{}}
}

// Field declares name. Redeclaring a name replaces its node but keeps its
// position.
func (o *ObjectSchema) Field(name string, n Node) *ObjectSchema {
	if _, ok := o.fields[name]; !ok {
		o.names = append(o.names, name)
	}
	o.fields[name] = n
	return o
}

// UnknownStrict sets unknown policy to Strict.
func (o *ObjectSchema) UnknownStrict() *ObjectSchema {
	o.unknown = UnknownStrict
	return o
}

// UnknownStrip sets unknown policy to Strip.
func (o *ObjectSchema) UnknownStrip() *ObjectSchema {
	o.unknown = UnknownStrip
	return o
}

// UnknownPassthrough sets unknown policy to Passthrough.
func (o *ObjectSchema) UnknownPassthrough() *ObjectSchema {
	o.unknown = UnknownPassthrough
	return o
}

// Refine adds an object-level check run after the fields parsed cleanly.
// Issue paths returned by fn are relative to the object.
func (o *ObjectSchema) Refine(fn func(ctx context.Context, m map[string]any) goform.Issues) *ObjectSchema {
	if fn != nil {
		o.refines = append(o.refines, fn)
	}
	return o
}

// Fields returns the declared field names in declaration order.
func (o *ObjectSchema) Fields() []string { return append([]string(nil), o.names...) }

// FieldNode returns the node declared for name.
func (o *ObjectSchema) FieldNode(name string) (Node, bool) {
	n, ok := o.fields[name]
	return n, ok
}

func (o *ObjectSchema) Parse(ctx context.Context, v any) (any, error) { return parseRoot(ctx, o, v) }

func (o *ObjectSchema) parseAt(ctx context.Context, v any, at fieldpath.Path) (any, goform.Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		if v == nil {
			return nil, goform.Issues{typeIssue(at, "object")}
		}
		if m, ok = tree.Clone(v).(map[string]any); !ok {
			return nil, goform.Issues{typeIssue(at, "object")}
		}
	}
	out := make(map[string]any, len(o.fields))
	var iss goform.Issues
	for _, name := range o.names {
		n := o.fields[name]
		fv, present := m[name]
		if !present {
			def, hasDef, required := n.onMissing()
			switch {
			case hasDef:
				fv = tree.Clone(def)
			case required:
				iss = append(iss, goform.IssueAt(at.Field(name), goform.CodeRequired, i18n.T(goform.CodeRequired, nil), nil))
				continue
			default:
				continue
			}
		}
		pv, sub := n.parseAt(ctx, fv, at.Field(name))
		out[name] = pv
		iss = append(iss, sub...)
	}

	var extra []string
	for k := range m {
		if _, ok := o.fields[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		switch o.unknown {
		case UnknownStrict:
			iss = append(iss, goform.IssueAt(at.Field(k), goform.CodeUnknownKey, i18n.T(goform.CodeUnknownKey, nil), nil))
		case UnknownPassthrough:
			out[k] = tree.Clone(m[k])
		}
	}

	if len(iss) == 0 {
		for _, fn := range o.refines {
			for _, it := range fn(ctx, out) {
				it.Path = append(append(fieldpath.Path{}, at...), it.Path...)
				iss = append(iss, it)
			}
		}
	}
	return out, iss
}

func (o *ObjectSchema) onMissing() (any, bool, bool) { return nil, false, true }

func (o *ObjectSchema) JSONSchema() *js.Schema {
	out := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(o.names))}
	for _, name := range o.names {
		n := o.fields[name]
		out.Properties[name] = n.JSONSchema()
		if _, hasDef, required := n.onMissing(); required && !hasDef {
			out.Required = append(out.Required, name)
		}
	}
	switch o.unknown {
	case UnknownStrict:
		out.AdditionalProperties = false
	case UnknownPassthrough:
		out.AdditionalProperties = true
	}
	return out
}
