package dsl

import (
	"context"
	"regexp"
	"unicode/utf8"

	"github.com/reoring/goform"
	"github.com/reoring/goform/fieldpath"
	"github.com/reoring/goform/internal/tree"
	js "github.com/reoring/goform/jsonschema"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// StringSchema accepts Go strings.
type StringSchema struct {
	min, max   *int
	minR, maxR rule
	email      *rule
	pattern    *regexp.Regexp
	patternR   rule
}

// String returns a string schema with no length or format rules.
func String() *StringSchema { return &StringSchema{} }

// Min requires at least n characters.
func (s *StringSchema) Min(n int, msg ...string) *StringSchema {
	s.min = &n
	s.minR = rule{code: goform.CodeTooShort, params: map[string]any{"min": n}, msg: firstMsg(msg)}
	return s
}

// Max allows at most n characters.
func (s *StringSchema) Max(n int, msg ...string) *StringSchema {
	s.max = &n
	s.maxR = rule{code: goform.CodeTooLong, params: map[string]any{"max": n}, msg: firstMsg(msg)}
	return s
}

// Email requires an address of the form local@domain.tld.
func (s *StringSchema) Email(msg ...string) *StringSchema {
	s.email = &rule{code: goform.CodeInvalidFormat, params: map[string]any{"format": "email"}, msg: firstMsg(msg)}
	return s
}

// Pattern requires a match of re. It panics if re does not compile.
func (s *StringSchema) Pattern(re string, msg ...string) *StringSchema {
	s.pattern = regexp.MustCompile(re)
	s.patternR = rule{code: goform.CodeInvalidFormat, params: map[string]any{"pattern": re}, msg: firstMsg(msg)}
	return s
}

func (s *StringSchema) Parse(ctx context.Context, v any) (any, error) { return parseRoot(ctx, s, v) }

func (s *StringSchema) parseAt(_ context.Context, v any, at fieldpath.Path) (any, goform.Issues) {
	str, ok := v.(string)
	if !ok {
		return nil, goform.Issues{typeIssue(at, "string")}
	}
	n := utf8.RuneCountInString(str)
	var iss goform.Issues
	if s.min != nil && n < *s.min {
		iss = append(iss, s.minR.issue(at))
	}
	if s.max != nil && n > *s.max {
		iss = append(iss, s.maxR.issue(at))
	}
	if s.email != nil && !emailRe.MatchString(str) {
		iss = append(iss, s.email.issue(at))
	}
	if s.pattern != nil && !s.pattern.MatchString(str) {
		iss = append(iss, s.patternR.issue(at))
	}
	return str, iss
}

func (s *StringSchema) onMissing() (any, bool, bool) { return nil, false, true }

func (s *StringSchema) JSONSchema() *js.Schema {
	out := &js.Schema{Type: "string", MinLength: s.min, MaxLength: s.max}
	if s.email != nil {
		out.Format = "email"
	}
	if s.pattern != nil {
		out.Pattern = s.pattern.String()
	}
	return out
}

// NumberSchema accepts any Go numeric value and json.Number, producing float64.
type NumberSchema struct {
	min, max   *float64
	minR, maxR rule
	integer    bool
}

// Number returns a number schema with no bounds.
func Number() *NumberSchema { return &NumberSchema{} }

// Min requires a value >= n.
func (s *NumberSchema) Min(n float64, msg ...string) *NumberSchema {
	s.min = &n
	s.minR = rule{code: goform.CodeTooSmall, params: map[string]any{"min": n}, msg: firstMsg(msg)}
	return s
}

// Max requires a value <= n.
func (s *NumberSchema) Max(n float64, msg ...string) *NumberSchema {
	s.max = &n
	s.maxR = rule{code: goform.CodeTooBig, params: map[string]any{"max": n}, msg: firstMsg(msg)}
	return s
}

// Int rejects values with a fractional part.
func (s *NumberSchema) Int() *NumberSchema {
	s.integer = true
	return s
}

func (s *NumberSchema) Parse(ctx context.Context, v any) (any, error) { return parseRoot(ctx, s, v) }

func (s *NumberSchema) parseAt(_ context.Context, v any, at fieldpath.Path) (any, goform.Issues) {
	n, ok := tree.Number(v)
	if !ok {
		return nil, goform.Issues{typeIssue(at, "number")}
	}
	var iss goform.Issues
	if s.integer && n != float64(int64(n)) {
		iss = append(iss, typeIssue(at, "integer"))
	}
	if s.min != nil && n < *s.min {
		iss = append(iss, s.minR.issue(at))
	}
	if s.max != nil && n > *s.max {
		iss = append(iss, s.maxR.issue(at))
	}
	return n, iss
}

func (s *NumberSchema) onMissing() (any, bool, bool) { return nil, false, true }

func (s *NumberSchema) JSONSchema() *js.Schema {
	typ := "number"
	if s.integer {
		typ = "integer"
	}
	return &js.Schema{Type: typ, Minimum: s.min, Maximum: s.max}
}

// BoolSchema accepts Go bools.
type BoolSchema struct{}

// Bool returns a bool schema.
func Bool() *BoolSchema { return &BoolSchema{} }

func (s *BoolSchema) Parse(ctx context.Context, v any) (any, error) { return parseRoot(ctx, s, v) }

func (s *BoolSchema) parseAt(_ context.Context, v any, at fieldpath.Path) (any, goform.Issues) {
	b, ok := v.(bool)
	if !ok {
		return nil, goform.Issues{typeIssue(at, "boolean")}
	}
	return b, nil
}

func (s *BoolSchema) onMissing() (any, bool, bool) { return nil, false, true }

func (s *BoolSchema) JSONSchema() *js.Schema { return &js.Schema{Type: "boolean"} }
