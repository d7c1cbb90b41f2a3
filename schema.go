package goform

import (
	"context"

	"github.com/reoring/goform/internal/tree"
)

// Schema is the whole-tree validation capability consumed by a Form.
// Parse returns the normalized tree (defaults applied) or an Issues error.
// Implementations may block.
type Schema interface {
	Parse(ctx context.Context, v any) (any, error)
}

// SchemaFunc adapts a function to Schema.
type SchemaFunc func(ctx context.Context, v any) (any, error)

func (f SchemaFunc) Parse(ctx context.Context, v any) (any, error) { return f(ctx, v) }

// SafeParse parses v, returning (parsed, true) on success.
func SafeParse(ctx context.Context, s Schema, v any) (any, bool) {
	out, err := s.Parse(ctx, v)
	if err != nil {
		return nil, false
	}
	return out, true
}

// collectIssues evaluates s over a snapshot of values. Errors that are not
// Issues surface as a single root issue, which matches no field.
func (f *Form) collectIssues(ctx context.Context, values map[string]any) Issues {
	if f.schema == nil {
		return nil
	}
	_, err := f.schema.Parse(ctx, values)
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	f.log.WarnContext(ctx, "schema evaluation failed", "err", err)
	return Issues{{Code: CodeParseError, Message: err.Error()}}
}

// prepareInitialValues resolves the initial tree: the schema-parsed base
// values, else the schema-parsed empty object, else a clone of base.
func prepareInitialValues(ctx context.Context, base map[string]any, s Schema) map[string]any {
	fallback := tree.CloneMap(base)
	if s == nil {
		return fallback
	}
	if base != nil {
		if parsed, ok := SafeParse(ctx, s, tree.CloneMap(base)); ok {
			if m, ok := parsed.(map[string]any); ok {
				return tree.CloneMap(m)
			}
		}
	}
	if parsed, ok := SafeParse(ctx, s, map[string]any{}); ok {
		if m, ok := parsed.(map[string]any); ok {
			return tree.CloneMap(m)
		}
	}
	return fallback
}
