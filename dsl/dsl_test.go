package dsl_test

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/reoring/goform"
	g "github.com/reoring/goform/dsl"
)

func issuesOf(t *testing.T, err error) goform.Issues {
	t.Helper()
	iss, ok := goform.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	return iss
}

func hasIssue(iss goform.Issues, name, code string) bool {
	for _, it := range iss {
		if it.Name() == name && it.Code == code {
			return true
		}
	}
	return false
}

func TestString_Rules(t *testing.T) {
	ctx := context.Background()
	s := g.String().Min(2, "too short").Max(4).Email()
	_, err := s.Parse(ctx, "a")
	iss := issuesOf(t, err)
	if iss[0].Message != "too short" || iss[0].Code != goform.CodeTooShort {
		t.Fatalf("issues = %v", iss)
	}
	if !hasIssue(iss, "", goform.CodeInvalidFormat) {
		t.Fatalf("expected email format issue: %v", iss)
	}
	if _, err := g.String().Email().Parse(ctx, "a@b.co"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	if _, err := g.String().Parse(ctx, 3); !hasIssue(issuesOf(t, err), "", goform.CodeInvalidType) {
		t.Fatalf("expected invalid_type")
	}
	if _, err := g.String().Pattern(`^\d+$`).Parse(ctx, "12a"); err == nil {
		t.Fatalf("pattern not enforced")
	}
}

func TestString_MaxMessageFromTranslator(t *testing.T) {
	_, err := g.String().Max(1).Parse(context.Background(), "ab")
	iss := issuesOf(t, err)
	if iss[0].Message != "Must contain at most 1 item(s)" {
		t.Fatalf("message = %q", iss[0].Message)
	}
}

func TestNumber_AcceptsGoNumerics(t *testing.T) {
	ctx := context.Background()
	n := g.Number().Min(18, "Must be 18 or older").Max(120)
	for _, v := range []any{int(30), int64(30), float32(30), json.Number("30")} {
		out, err := n.Parse(ctx, v)
		if err != nil || out != 30.0 {
			t.Fatalf("Parse(%T) = %v, %v", v, out, err)
		}
	}
	_, err := n.Parse(ctx, 12)
	if iss := issuesOf(t, err); iss[0].Message != "Must be 18 or older" {
		t.Fatalf("issues = %v", iss)
	}
	_, err = n.Parse(ctx, 121)
	if iss := issuesOf(t, err); iss[0].Message != "Must be less than or equal to 120" {
		t.Fatalf("issues = %v", iss)
	}
	if _, err := g.Number().Int().Parse(ctx, 1.5); err == nil {
		t.Fatalf("Int accepted a fraction")
	}
}

func TestObject_CollectsAllIssuesWithPaths(t *testing.T) {
	ctx := context.Background()
	s := g.Object().
		Field("personal", g.Object().
			Field("first", g.String().Min(1, "First name is required")).
			Field("email", g.String().Email("Email must be valid"))).
		Field("skills", g.Array(g.String()).Min(1, "Select at least one skill")).
		Field("mentor", g.Bool())

	_, err := s.Parse(ctx, map[string]any{
		"personal": map[string]any{"first": "", "email": "x"},
		"skills":   []any{},
	})
	iss := issuesOf(t, err)
	for _, want := range []struct{ name, code string }{
		{"personal.first", goform.CodeTooShort},
		{"personal.email", goform.CodeInvalidFormat},
		{"skills", goform.CodeTooShort},
		{"mentor", goform.CodeRequired},
	} {
		if !hasIssue(iss, want.name, want.code) {
			t.Fatalf("missing %s/%s in %v", want.name, want.code, iss)
		}
	}
}

func TestObject_ArrayElementPaths(t *testing.T) {
	s := g.Object().Field("items", g.Array(g.Object().Field("qty", g.Number().Min(1))))
	_, err := s.Parse(context.Background(), map[string]any{
		"items": []any{map[string]any{"qty": 2}, map[string]any{"qty": 0}},
	})
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Name() != "items.1.qty" || iss[0].Path.Pointer() != "/items/1/qty" {
		t.Fatalf("issues = %v", iss)
	}
}

func TestObject_UnknownPolicies(t *testing.T) {
	ctx := context.Background()
	in := map[string]any{"a": "x", "zzz": 1}

	out, err := g.Object().Field("a", g.String()).Parse(ctx, in)
	if err != nil {
		t.Fatalf("strip: %v", err)
	}
	if _, ok := out.(map[string]any)["zzz"]; ok {
		t.Fatalf("strip kept unknown key")
	}

	_, err = g.Object().Field("a", g.String()).UnknownStrict().Parse(ctx, in)
	if !hasIssue(issuesOf(t, err), "zzz", goform.CodeUnknownKey) {
		t.Fatalf("strict did not report zzz")
	}

	out, _ = g.Object().Field("a", g.String()).UnknownPassthrough().Parse(ctx, in)
	if out.(map[string]any)["zzz"] != 1 {
		t.Fatalf("passthrough dropped zzz")
	}
}

func TestModifiers(t *testing.T) {
	ctx := context.Background()
	s := g.Object().
		Field("nick", g.Optional(g.String())).
		Field("salary", g.Nullable(g.Number().Min(0))).
		Field("tags", g.Default(g.Array(g.String()), []any{"go"}))

	out, err := s.Parse(ctx, map[string]any{"salary": nil})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := out.(map[string]any)
	if _, ok := m["nick"]; ok {
		t.Fatalf("optional key materialized")
	}
	if m["salary"] != nil {
		t.Fatalf("salary = %v", m["salary"])
	}
	if tags := m["tags"].([]any); len(tags) != 1 || tags[0] != "go" {
		t.Fatalf("tags = %v", m["tags"])
	}

	_, err = s.Parse(ctx, map[string]any{})
	if !hasIssue(issuesOf(t, err), "salary", goform.CodeRequired) {
		t.Fatalf("nullable field should still be required")
	}
}

func TestObject_Refine(t *testing.T) {
	s := g.Object().
		Field("pw", g.String()).
		Field("confirm", g.String()).
		Refine(func(_ context.Context, m map[string]any) goform.Issues {
			if m["pw"] != m["confirm"] {
				return goform.Issues{{Path: nil, Code: goform.CodeCustom, Message: "mismatch"}}
			}
			return nil
		})
	wrapped := g.Object().Field("account", s)
	_, err := wrapped.Parse(context.Background(), map[string]any{"account": map[string]any{"pw": "a", "confirm": "b"}})
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Name() != "account" || iss[0].Message != "mismatch" {
		t.Fatalf("issues = %v", iss)
	}
}

func TestJSONSchema(t *testing.T) {
	s := g.Object().
		Field("email", g.String().Email()).
		Field("age", g.Number().Min(18)).
		Field("salary", g.Nullable(g.Number())).
		Field("nick", g.Optional(g.String())).
		UnknownStrict()
	js := s.JSONSchema()
	if js.Type != "object" || js.AdditionalProperties != false {
		t.Fatalf("root = %+v", js)
	}
	if len(js.Required) != 3 || js.Required[0] != "email" {
		t.Fatalf("required = %v", js.Required)
	}
	if js.Properties["email"].Format != "email" || *js.Properties["age"].Minimum != 18 {
		t.Fatalf("properties = %+v", js.Properties)
	}
	if tp, ok := js.Properties["salary"].Type.([]string); !ok || tp[1] != "null" {
		t.Fatalf("salary type = %v", js.Properties["salary"].Type)
	}
	if _, err := json.Marshal(js); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestSchemaDrivesForm(t *testing.T) {
	ctx := context.Background()
	s := g.Object().
		Field("email", g.String().Email("Email must be valid")).
		Field("age", g.Default(g.Number().Min(18, "Must be 18 or older"), 25))
	f, err := goform.New(ctx, goform.Options{
		DefaultValues: map[string]any{"email": "a@b.co"},
		Schema:        s,
		Mode:          goform.ModeOnChange,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.GetValue("age") != 25.0 {
		t.Fatalf("schema default not applied: %v", f.GetValue("age"))
	}
	f.SetValue(ctx, "email", "nope")
	if f.Errors()["email"] != "Email must be valid" {
		t.Fatalf("errors = %v", f.Errors())
	}
	f.SetValue(ctx, "age", 10)
	if f.Errors()["age"] != "Must be 18 or older" {
		t.Fatalf("errors = %v", f.Errors())
	}
}
