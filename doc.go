// Package goform provides a framework-agnostic form-state engine:
//
// - A value tree addressed by dotted paths ("a.0.b", "a[0].b")
// - Per-field dirty/touched/error/validating state and a derived FormState
// - Validator chains and a whole-tree Schema, run on submit/blur/change triggers
// - Events and watchers so bindings stay in sync with the tree
//
// Design policy:
// - Keep only public APIs in the root package; path addressing lives in fieldpath/,
//   value cloning and comparison in internal/tree.
// - Put the schema builders under dsl/, field arrays under fieldarray/, and the
//   step-by-step survey flow under survey/. The CLI lives in cmd/goform.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	f, err := goform.New(ctx, goform.Options{Schema: s, Mode: goform.ModeOnBlur})
//	email := f.Register("profile.email", goform.RegisterOptions{})
//	email.OnChange(ctx, goform.InputEvent{Type: "email", Value: "a@b.c"})
//	email.OnBlur(ctx)
//
//	submit := f.HandleSubmit(func(ctx context.Context, v map[string]any) error {
//		return save(ctx, v)
//	}, nil)
//	err = submit(ctx)
package goform
