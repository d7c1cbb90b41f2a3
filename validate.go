package goform

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/reoring/goform/fieldpath"
	"github.com/reoring/goform/internal/tree"
)

// ResultMessage turns a validator result into an error message; "" passes.
// fallback is used for a plain false. A nil error of any concrete type passes.
func ResultMessage(result any, fallback string) string {
	switch r := result.(type) {
	case nil:
		return ""
	case bool:
		if r {
			return ""
		}
		return fallback
	case string:
		return r
	case []string:
		msgs := make([]string, 0, len(r))
		for _, m := range r {
			if m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "\n")
	case []any:
		msgs := make([]string, 0, len(r))
		for _, m := range r {
			if s := ResultMessage(m, ""); s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "\n")
	case error:
		if nilValue(r) {
			return ""
		}
		return r.Error()
	}
	return fmt.Sprint(result)
}

func nilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// validateField runs name's validator chain and, when every validator
// passes, the schema lookup for name's exact path. shared carries issues
// already computed for a multi-field Validate call. Each run takes a fresh
// generation; a run whose generation is no longer current when it resumes
// is discarded without touching state.
func (f *Form) validateField(ctx context.Context, name string, shared *Issues) bool {
	p := fieldpath.Parse(name)

	f.mu.Lock()
	st := f.ensureState(name)
	cfg := f.ensureConfig(name)
	validators := slices.Clone(st.Validators)
	fallback := cfg.defaultError
	st.IsValidating = true
	f.lastGen++
	gen := f.lastGen
	f.gens[name] = gen
	value, _ := fieldpath.Get(f.values, p)
	value = tree.Clone(value)
	fc := FieldContext{Name: name, Values: tree.CloneMap(f.values)}
	f.mu.Unlock()

	for _, v := range validators {
		msg := ResultMessage(v(ctx, value, fc), fallback)
		if done, ok := f.settle(ctx, name, gen, st, msg, msg != ""); done {
			return ok
		}
	}

	if f.schema != nil {
		var issues Issues
		if shared != nil {
			issues = *shared
		} else {
			issues = f.collectIssues(ctx, f.GetValues())
		}
		msg, failed := issues.First(p)
		if done, ok := f.settle(ctx, name, gen, st, msg, failed); done {
			return ok
		}
	}

	_, ok := f.settle(ctx, name, gen, st, "", true)
	return ok
}

// settle checks whether run gen of name is still current and, when final
// is set, records msg as its outcome. done reports that the run is over
// (superseded or final); ok is the run's verdict.
func (f *Form) settle(ctx context.Context, name string, gen uint64, st *FieldState, msg string, final bool) (done, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gens[name] != gen {
		f.log.DebugContext(ctx, "validation superseded", slog.String("field", name), slog.Uint64("gen", gen))
		return true, false
	}
	if ctx.Err() != nil {
		st.IsValidating = false
		return true, false
	}
	if !final {
		return false, false
	}
	st.Error = msg
	st.IsValidating = false
	return true, msg == ""
}

// Validate validates the named fields, or every known field plus every path
// reported by the schema when none are named. Named calls only consider
// schema issues for the named paths. Fields run concurrently; Validate
// reports whether all of them passed.
func (f *Form) Validate(ctx context.Context, names ...string) bool {
	explicit := len(names) > 0
	selected := make([]string, 0, len(names))
	seen := map[string]bool{}
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			selected = append(selected, n)
		}
	}
	if explicit {
		for _, n := range names {
			c, _ := canonical(n)
			add(c)
		}
	} else {
		for _, n := range f.fieldNames() {
			add(n)
		}
	}

	var shared *Issues
	if f.schema != nil {
		issues := f.collectIssues(ctx, f.GetValues())
		if explicit {
			filtered := Issues{}
			for _, it := range issues {
				if seen[it.Name()] {
					filtered = append(filtered, it)
				}
			}
			issues = filtered
		} else {
			for _, it := range issues {
				add(it.Name())
			}
		}
		shared = &issues
	}

	results := make([]bool, len(selected))
	var wg sync.WaitGroup
	for i, name := range selected {
		wg.Go(func() {
			results[i] = f.validateField(ctx, name, shared)
		})
	}
	wg.Wait()

	valid := !slices.Contains(results, false)
	f.log.DebugContext(ctx, "form validated", slog.Int("fields", len(selected)), slog.Bool("valid", valid))
	return valid
}
