// Package dsl builds goform.Schema values in a Zod-like style.
//
// Nodes are composed with builder methods and every node is a schema on its
// own. Objects keep declaration order, collect every issue instead of
// stopping at the first, and report paths as fieldpath.Path so a form can
// attach each issue to the field with the same path.
//
// Usage example:
//
//	import g "github.com/reoring/goform/dsl"
//
//	profile := g.Object().
//	    Field("email", g.String().Email("Email must be valid")).
//	    Field("age", g.Number().Min(18, "Must be 18 or older").Max(120)).
//	    Field("salary", g.Nullable(g.Number().Min(0))).
//	    Field("nickname", g.Optional(g.String())).
//	    Field("tags", g.Default(g.Array(g.String()), []any{}))
//
//	f, err := goform.New(ctx, goform.Options{Schema: g.Object().Field("profile", profile)})
//
// Missing keys report required unless wrapped in Optional or Default.
// Undeclared keys are stripped by default; UnknownStrict reports them and
// UnknownPassthrough keeps them.
//
// JSON Schema export:
//
//	s := profile.JSONSchema() // *jsonschema.Schema
package dsl
