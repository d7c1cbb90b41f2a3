package rules_test

import (
	"context"
	"testing"

	"github.com/reoring/goform"
	"github.com/reoring/goform/rules"
)

func run(v goform.Validator, value any, values map[string]any) any {
	return v(context.Background(), value, goform.FieldContext{Name: "x", Values: values})
}

func TestIf_Then(t *testing.T) {
	values := map[string]any{
		"kind":  "business",
		"count": 3,
		"items": []any{map[string]any{"id": "a"}},
	}
	need := rules.Required("VAT number required")

	if got := run(rules.If("kind", rules.Eq, "business").Then(need), "", values); got != "VAT number required" {
		t.Fatalf("condition held but validator skipped: %v", got)
	}
	if got := run(rules.If("kind", rules.Eq, "personal").Then(need), "", values); got != true {
		t.Fatalf("condition failed but validator ran: %v", got)
	}
	if got := run(rules.If("missing", rules.Ne, "x").Then(need), "", values); got != true {
		t.Fatalf("missing path should not hold: %v", got)
	}
	if got := run(rules.If("items[0].id", rules.Eq, "a").Then(need), "", values); got != "VAT number required" {
		t.Fatalf("bracket path not resolved: %v", got)
	}
}

func TestConditional_Ordered(t *testing.T) {
	values := map[string]any{"n": 3, "s": "b"}
	cases := []struct {
		c    rules.Conditional
		want bool
	}{
		{rules.If("n", rules.Gt, 2.5), true},
		{rules.If("n", rules.Ge, int64(3)), true},
		{rules.If("n", rules.Lt, 3), false},
		{rules.If("n", rules.Le, 3.0), true},
		{rules.If("n", rules.Eq, 3.0), true},
		{rules.If("s", rules.Lt, "c"), true},
		{rules.If("s", rules.Gt, 1), false},
		{rules.If("n", rules.Gt, "a"), false},
	}
	for i, tc := range cases {
		if got := tc.c.Holds(values); got != tc.want {
			t.Fatalf("case %d: Holds = %v, want %v", i, got, tc.want)
		}
	}
}

func TestConditional_Composite(t *testing.T) {
	values := map[string]any{"a": 1, "b": 2}
	a := rules.If("a", rules.Eq, 1)
	b := rules.If("b", rules.Eq, 3)
	if a.And(b).Holds(values) {
		t.Fatalf("And held with a false operand")
	}
	if !a.Or(b).Holds(values) {
		t.Fatalf("Or did not hold with a true operand")
	}
	if !rules.IfAll(a, rules.If("b", rules.Gt, 1)).Holds(values) {
		t.Fatalf("IfAll did not hold")
	}
	if rules.IfAny(b, rules.If("a", rules.Ne, 1)).Holds(values) {
		t.Fatalf("IfAny held with false operands")
	}
}

func TestRequired(t *testing.T) {
	req := rules.Required("")
	for _, v := range []any{nil, "", []any{}, map[string]any{}} {
		if got := run(req, v, nil); got != "Required" {
			t.Fatalf("Required(%v) = %v", v, got)
		}
	}
	for _, v := range []any{"x", 0, false, []any{1}} {
		if got := run(req, v, nil); got != true {
			t.Fatalf("Required(%v) = %v", v, got)
		}
	}
}

func TestAtLeastOne(t *testing.T) {
	v := rules.AtLeastOne("pick one")
	if got := run(v, []any{}, nil); got != "pick one" {
		t.Fatalf("empty = %v", got)
	}
	if got := run(v, []any{"a"}, nil); got != true {
		t.Fatalf("non-empty = %v", got)
	}
	if got := run(v, "scalar", nil); got != true {
		t.Fatalf("scalar = %v", got)
	}
}

func TestUnique(t *testing.T) {
	if got := run(rules.Unique("", "dup"), []any{"a", "b", "a"}, nil); got != "dup" {
		t.Fatalf("scalar duplicate = %v", got)
	}
	byID := rules.Unique("id", "")
	rows := []any{
		map[string]any{"id": 1, "n": "x"},
		map[string]any{"id": 2, "n": "x"},
	}
	if got := run(byID, rows, nil); got != true {
		t.Fatalf("distinct keys = %v", got)
	}
	rows = append(rows, map[string]any{"id": 1})
	if got := run(byID, rows, nil); got != `duplicate value "1" at 2 (first at 0)` {
		t.Fatalf("keyed duplicate = %v", got)
	}
}

func TestEqualTo(t *testing.T) {
	values := map[string]any{"password": "s3cret"}
	v := rules.EqualTo("password", "Passwords differ")
	if got := run(v, "s3cret", values); got != true {
		t.Fatalf("equal = %v", got)
	}
	if got := run(v, "other", values); got != "Passwords differ" {
		t.Fatalf("different = %v", got)
	}
}

func TestAndOr(t *testing.T) {
	fail := func(msg string) goform.Validator {
		return func(context.Context, any, goform.FieldContext) any { return msg }
	}
	pass := func(context.Context, any, goform.FieldContext) any { return nil }
	no := func(context.Context, any, goform.FieldContext) any { return false }

	if got := run(rules.And(pass, fail("first"), fail("second")), nil, nil); got != "first" {
		t.Fatalf("And = %v", got)
	}
	if got := run(rules.And(pass, nil), nil, nil); got != true {
		t.Fatalf("And all pass = %v", got)
	}
	if got := run(rules.And(no), nil, nil); got != "Invalid value" {
		t.Fatalf("And false = %v", got)
	}
	if got := run(rules.Or(fail("a"), pass), nil, nil); got != true {
		t.Fatalf("Or with a pass = %v", got)
	}
	if got := run(rules.Or(fail("a"), fail("b")), nil, nil); got != "a" {
		t.Fatalf("Or all fail = %v", got)
	}
}

func TestThen_OnForm(t *testing.T) {
	ctx := context.Background()
	f, err := goform.New(ctx, goform.Options{DefaultValues: map[string]any{"kind": "personal", "vat": ""}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.Register("vat", goform.RegisterOptions{Validate: []goform.Validator{
		rules.If("kind", rules.Eq, "business").Then(rules.Required("VAT required")),
	}})
	if !f.Validate(ctx) {
		t.Fatalf("personal form invalid: %v", f.Errors())
	}
	f.SetValue(ctx, "kind", "business")
	if f.Validate(ctx) {
		t.Fatalf("business form without VAT accepted")
	}
	if got := f.Errors()["vat"]; got != "VAT required" {
		t.Fatalf("errors = %v", f.Errors())
	}
}
