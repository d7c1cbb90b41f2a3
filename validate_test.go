package goform_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/reoring/goform"
	"github.com/reoring/goform/fieldpath"
)

func returning(res any) goform.Validator {
	return func(context.Context, any, goform.FieldContext) any { return res }
}

type codeError struct{ code int }

func (e *codeError) Error() string { return fmt.Sprintf("code %d", e.code) }

func TestValidate_ResultNormalization(t *testing.T) {
	cases := []struct {
		name string
		res  any
		want string
	}{
		{"true", true, ""},
		{"nil", nil, ""},
		{"empty string", "", ""},
		{"false", false, "fallback"},
		{"string", "too short", "too short"},
		{"slice", []string{"a", "", "b"}, "a\nb"},
		{"empty slice", []string{""}, ""},
		{"error", errors.New("boom"), "boom"},
		{"typed nil error", (*codeError)(nil), ""},
		{"typed error", &codeError{code: 7}, "code 7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newForm(t, goform.Options{})
			f.Register("x", goform.RegisterOptions{
				Validate:     []goform.Validator{returning(tc.res)},
				DefaultError: "fallback",
			})
			ok := f.Validate(context.Background(), "x")
			st, _ := f.FieldState("x")
			if st.Error != tc.want {
				t.Fatalf("error = %q, want %q", st.Error, tc.want)
			}
			if ok != (tc.want == "") {
				t.Fatalf("Validate = %v with error %q", ok, st.Error)
			}
		})
	}
}

func TestValidate_DefaultErrorMessage(t *testing.T) {
	f := newForm(t, goform.Options{})
	f.Register("x", goform.RegisterOptions{Validate: []goform.Validator{returning(false)}})
	f.Validate(context.Background())
	if got := f.Errors()["x"]; got != "Invalid value" {
		t.Fatalf("default error = %q", got)
	}
}

func TestValidate_FirstFailureShortCircuits(t *testing.T) {
	called := false
	f := newForm(t, goform.Options{})
	f.Register("x", goform.RegisterOptions{Validate: []goform.Validator{
		returning("first"),
		func(context.Context, any, goform.FieldContext) any { called = true; return "second" },
	}})
	f.Validate(context.Background(), "x")
	if called {
		t.Fatalf("second validator ran after a failure")
	}
	if f.Errors()["x"] != "first" {
		t.Fatalf("errors = %v", f.Errors())
	}
}

func TestValidate_ValidatorSeesValueAndTree(t *testing.T) {
	f := newForm(t, goform.Options{DefaultValues: map[string]any{"pw": "a", "confirm": "b"}})
	f.Register("confirm", goform.RegisterOptions{Validate: []goform.Validator{
		func(_ context.Context, v any, fc goform.FieldContext) any {
			if fc.Name != "confirm" {
				return "wrong name " + fc.Name
			}
			if v != fc.Values["pw"] {
				return "mismatch"
			}
			return true
		},
	}})
	if f.Validate(context.Background()) {
		t.Fatalf("expected mismatch")
	}
	if f.Errors()["confirm"] != "mismatch" {
		t.Fatalf("errors = %v", f.Errors())
	}
}

// requireB reports an issue at b when b is missing or empty, and at a when a
// equals "schema-bad".
var requireB = goform.SchemaFunc(func(ctx context.Context, v any) (any, error) {
	m := v.(map[string]any)
	var iss goform.Issues
	if m["a"] == "schema-bad" {
		iss = append(iss, goform.IssueAt(fieldpath.Parse("a"), goform.CodeCustom, "schema says no", nil))
	}
	if s, _ := m["b"].(string); s == "" {
		iss = append(iss, goform.IssueAt(fieldpath.Parse("b"), goform.CodeRequired, "Required", nil))
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return m, nil
})

func TestValidate_AllIncludesSchemaOnlyPaths(t *testing.T) {
	f := newForm(t, goform.Options{Schema: requireB})
	f.Register("a", goform.RegisterOptions{})
	if f.Validate(context.Background()) {
		t.Fatalf("expected invalid form")
	}
	if got := f.Errors()["b"]; got != "Required" {
		t.Fatalf("b error = %q (errors %v)", got, f.Errors())
	}
	if _, ok := f.FieldState("b"); !ok {
		t.Fatalf("schema-only path has no field state")
	}
}

func TestValidate_ExplicitPathsFilterIssues(t *testing.T) {
	f := newForm(t, goform.Options{Schema: requireB})
	f.Register("a", goform.RegisterOptions{})
	if !f.Validate(context.Background(), "a", "a") {
		t.Fatalf("a alone should pass")
	}
	if _, ok := f.FieldState("b"); ok {
		t.Fatalf("explicit validate created state for b")
	}
}

func TestValidate_LocalFailureMasksSchemaIssue(t *testing.T) {
	f := newForm(t, goform.Options{DefaultValues: map[string]any{"a": "schema-bad", "b": "ok"}, Schema: requireB})
	f.Register("a", goform.RegisterOptions{Validate: []goform.Validator{returning("local says no")}})
	f.Validate(context.Background())
	if got := f.Errors()["a"]; got != "local says no" {
		t.Fatalf("a error = %q", got)
	}
	f.Register("a", goform.RegisterOptions{Validate: []goform.Validator{returning(true)}})
	f.Validate(context.Background())
	if got := f.Errors()["a"]; got != "schema says no" {
		t.Fatalf("a error = %q", got)
	}
}

func TestValidate_NonIssuesSchemaErrorMatchesNoField(t *testing.T) {
	s := goform.SchemaFunc(func(context.Context, any) (any, error) { return nil, errors.New("backend down") })
	f := newForm(t, goform.Options{Schema: s})
	f.Register("a", goform.RegisterOptions{})
	if !f.Validate(context.Background()) {
		t.Fatalf("root-level schema failure should not fail fields: %v", f.Errors())
	}
}

func TestValidate_CanceledContextDiscards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newForm(t, goform.Options{})
	f.Register("a", goform.RegisterOptions{Validate: []goform.Validator{returning("err")}})
	if f.Validate(ctx, "a") {
		t.Fatalf("canceled run reported success")
	}
	st, _ := f.FieldState("a")
	if st.Error != "" || st.IsValidating {
		t.Fatalf("canceled run touched state: %+v", st)
	}
}

func TestValidate_LatestRunWins(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(_ context.Context, v any, _ goform.FieldContext) any {
		if v == "slow" {
			close(started)
			<-release
			return "stale error"
		}
		return true
	}
	f := newForm(t, goform.Options{})
	f.Register("a", goform.RegisterOptions{Validate: []goform.Validator{slow}})

	var wg sync.WaitGroup
	wg.Go(func() {
		f.SetValue(ctx, "a", "slow", goform.ShouldValidate(true))
	})
	<-started
	f.SetValue(ctx, "a", "fast", goform.ShouldValidate(true))
	close(release)
	wg.Wait()

	st, _ := f.FieldState("a")
	if st.Error != "" {
		t.Fatalf("superseded run wrote its result: %q", st.Error)
	}
	if st.IsValidating {
		t.Fatalf("IsValidating left set")
	}
}

func TestTrigger_OnChangeMode(t *testing.T) {
	ctx := context.Background()
	f := newForm(t, goform.Options{Mode: goform.ModeOnChange})
	b := f.Register("a", goform.RegisterOptions{Validate: []goform.Validator{returning("bad")}})
	b.Set(ctx, "x")
	if f.Errors()["a"] != "bad" {
		t.Fatalf("onChange mode did not validate on set")
	}
	f.ClearErrors()
	f.SetValue(ctx, "a", "y", goform.ShouldValidate(false))
	if len(f.Errors()) != 0 {
		t.Fatalf("ShouldValidate(false) ignored")
	}
}

func TestTrigger_OnSubmitModeDoesNotValidateOnSet(t *testing.T) {
	f := newForm(t, goform.Options{})
	b := f.Register("a", goform.RegisterOptions{Validate: []goform.Validator{returning("bad")}})
	b.Set(context.Background(), "x")
	if len(f.Errors()) != 0 {
		t.Fatalf("submit mode validated on set: %v", f.Errors())
	}
	if st, _ := f.FieldState("a"); !st.Dirty || st.Touched {
		t.Fatalf("binding set flags = %+v", st)
	}
}

func TestTrigger_BlurFieldOverride(t *testing.T) {
	ctx := context.Background()
	f := newForm(t, goform.Options{Mode: goform.ModeOnChange})
	b := f.Register("a", goform.RegisterOptions{
		Validate:   []goform.Validator{returning("bad")},
		ValidateOn: goform.TriggerBlur,
	})
	b.Set(ctx, "x")
	if len(f.Errors()) != 0 {
		t.Fatalf("blur field validated on change")
	}
	if b.OnBlur(ctx) {
		t.Fatalf("OnBlur reported success")
	}
	st, _ := f.FieldState("a")
	if !st.Touched || st.Error != "bad" {
		t.Fatalf("after blur: %+v", st)
	}
}

func TestTrigger_SubmitFieldOnChangeFormValidatesOnSet(t *testing.T) {
	f := newForm(t, goform.Options{Mode: goform.ModeOnChange})
	f.Register("a", goform.RegisterOptions{
		Validate:   []goform.Validator{returning("bad")},
		ValidateOn: goform.TriggerSubmit,
	})
	f.SetValue(context.Background(), "a", "x")
	if got := f.Errors()["a"]; got != "bad" {
		t.Fatalf("submit field on an onChange form not validated on set: %q", got)
	}
}

func TestSetValue_EmitsBeforeValidating(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}
	f := newForm(t, goform.Options{Mode: goform.ModeOnChange})
	f.Register("a", goform.RegisterOptions{Validate: []goform.Validator{
		func(context.Context, any, goform.FieldContext) any {
			record("validate")
			return nil
		},
	}})
	f.Subscribe(goform.EventValuesChange, func(goform.Event) { record("event") })
	f.SetValue(context.Background(), "a", "x")

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "event" || order[1] != "validate" {
		t.Fatalf("order = %v", order)
	}
}

func TestValidate_IsValidatingWhileInFlight(t *testing.T) {
	ctx := context.Background()
	f := newForm(t, goform.Options{})
	var during goform.FormState
	var field goform.FieldState
	f.Register("a", goform.RegisterOptions{Validate: []goform.Validator{
		func(context.Context, any, goform.FieldContext) any {
			during = f.FormState()
			field, _ = f.FieldState("a")
			return "bad"
		},
	}})
	if f.Validate(ctx, "a") {
		t.Fatalf("failing validator passed")
	}
	if !during.IsValidating || !field.IsValidating {
		t.Fatalf("in flight: form %v, field %v", during.IsValidating, field.IsValidating)
	}
	if f.FormState().IsValidating {
		t.Fatalf("IsValidating left set")
	}
}

func TestSetValue_UnwritablePathIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newForm(t, goform.Options{Mode: goform.ModeOnChange, DefaultValues: map[string]any{"a": "x"}})
	events := 0
	f.Subscribe(goform.EventValuesChange, func(goform.Event) { events++ })
	f.Register("a.b", goform.RegisterOptions{Validate: []goform.Validator{returning("bad")}})

	f.SetValue(ctx, "a.b", 1)
	if got := f.GetValue("a"); got != "x" {
		t.Fatalf("a = %v", got)
	}
	st, _ := f.FieldState("a.b")
	if st.Dirty || st.Error != "" || events != 0 {
		t.Fatalf("state = %+v, events = %d", st, events)
	}

	f.SetValue(ctx, "list.5000", 1)
	if _, ok := f.GetValues()["list"]; ok || events != 0 {
		t.Fatalf("far index written: %v", f.GetValues())
	}
}
