// Package rules provides reusable goform.Validator building blocks:
// conditional execution over other fields, collection checks, and
// And/Or combinators.
package rules

import (
	"context"
	"fmt"

	"github.com/reoring/goform"
	"github.com/reoring/goform/fieldpath"
	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/internal/tree"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional decides whether attached validators run, based on other
// values of the form.
type Conditional struct {
	path fieldpath.Path
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If compares the value at path (a form field name such as "a.b" or
// "a[0].b") with want.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: fieldpath.Parse(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition against a value tree.
func (c Conditional) Holds(values map[string]any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(values) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(values) {
				return true
			}
		}
		return false
	}
	cur, ok := fieldpath.Get(values, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then returns a validator that passes when the condition does not hold and
// otherwise behaves like And(validators...).
func (c Conditional) Then(validators ...goform.Validator) goform.Validator {
	inner := And(validators...)
	return func(ctx context.Context, v any, fc goform.FieldContext) any {
		if !c.Holds(fc.Values) {
			return true
		}
		return inner(ctx, v, fc)
	}
}

// Required fails on nil, "", and empty collections.
func Required(msg string) goform.Validator {
	if msg == "" {
		msg = i18n.T(goform.CodeRequired, nil)
	}
	return func(_ context.Context, v any, _ goform.FieldContext) any {
		switch x := v.(type) {
		case nil:
			return msg
		case string:
			if x == "" {
				return msg
			}
		case []any:
			if len(x) == 0 {
				return msg
			}
		case map[string]any:
			if len(x) == 0 {
				return msg
			}
		}
		return true
	}
}

// AtLeastOne fails when the value is a collection with no elements.
// Non-collections pass.
func AtLeastOne(msg string) goform.Validator {
	if msg == "" {
		msg = i18n.T(goform.CodeTooShort, map[string]string{"min": "1"})
	}
	return func(_ context.Context, v any, _ goform.FieldContext) any {
		if s, ok := v.([]any); ok && len(s) == 0 {
			return msg
		}
		return true
	}
}

// Unique fails when a collection holds the same element twice. With a
// non-empty key, elements are objects compared by the value at key.
func Unique(key, msg string) goform.Validator {
	kp := fieldpath.Parse(key)
	return func(_ context.Context, v any, _ goform.FieldContext) any {
		items, ok := v.([]any)
		if !ok {
			return true
		}
		seen := map[string]int{}
		for i, it := range items {
			kv := it
			if len(kp) > 0 {
				if kv, ok = fieldpath.Get(it, kp); !ok {
					continue
				}
			}
			k := fmt.Sprint(kv)
			if j, dup := seen[k]; dup {
				if msg != "" {
					return msg
				}
				return fmt.Sprintf("duplicate value %q at %d (first at %d)", k, i, j)
			}
			seen[k] = i
		}
		return true
	}
}

// EqualTo fails unless the value equals the value of the field at path.
func EqualTo(path, msg string) goform.Validator {
	p := fieldpath.Parse(path)
	if msg == "" {
		msg = i18n.T(goform.CodeInvalidValue, nil)
	}
	return func(_ context.Context, v any, fc goform.FieldContext) any {
		other, _ := fieldpath.Get(fc.Values, p)
		if !tree.Equal(v, other) {
			return msg
		}
		return true
	}
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return tree.Equal(cur, want)
	case Ne:
		return !tree.Equal(cur, want)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

// compareOrdered supports numbers of any Go kind, and strings.
func compareOrdered(cur any, op Op, want any) bool {
	if a, ok := tree.Number(cur); ok {
		b, ok := tree.Number(want)
		if !ok {
			return false
		}
		return ordered(a, b, op)
	}
	if a, ok := cur.(string); ok {
		b, ok := want.(string)
		if !ok {
			return false
		}
		return ordered(a, b, op)
	}
	return false
}

func ordered[T float64 | string](a, b T, op Op) bool {
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

// ---------- Validator combinators ----------

// And runs validators in order and returns the first failure.
func And(validators ...goform.Validator) goform.Validator {
	return func(ctx context.Context, v any, fc goform.FieldContext) any {
		for _, fn := range validators {
			if fn == nil {
				continue
			}
			if msg := goform.ResultMessage(fn(ctx, v, fc), i18n.T(goform.CodeInvalidValue, nil)); msg != "" {
				return msg
			}
		}
		return true
	}
}

// Or passes if any validator passes. When all fail, the first failure's
// message is returned.
func Or(validators ...goform.Validator) goform.Validator {
	return func(ctx context.Context, v any, fc goform.FieldContext) any {
		first := ""
		for _, fn := range validators {
			if fn == nil {
				continue
			}
			msg := goform.ResultMessage(fn(ctx, v, fc), i18n.T(goform.CodeInvalidValue, nil))
			if msg == "" {
				return true
			}
			if first == "" {
				first = msg
			}
		}
		if first == "" {
			return true
		}
		return first
	}
}
