// Package survey loads multi-step survey definitions and drives them
// through a goform.Form one step at a time.
package survey

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/reoring/goform"
	g "github.com/reoring/goform/dsl"
	"github.com/reoring/goform/fieldpath"
	js "github.com/reoring/goform/jsonschema"
	"github.com/reoring/goform/rules"
)

//go:embed survey.yaml
var defaultSurvey []byte

// Field types understood by Definition.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// Definition is a survey: ordered steps, each owning one section of the
// value tree.
type Definition struct {
	Title   string              `yaml:"title"`
	Options map[string][]Option `yaml:"options"`
	Steps   []Step              `yaml:"steps"`
}

// Step groups the fields validated together before moving forward.
type Step struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Section     string  `yaml:"section"`
	Fields      []Field `yaml:"fields"`
}

// Field declares one value under its step's section.
type Field struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Default  any    `yaml:"default"`
	Nullable bool   `yaml:"nullable"`
	Optional bool   `yaml:"optional"`
	// StepCheck excludes the field from step validation when false. The
	// field is still validated on submit.
	StepCheck *bool  `yaml:"stepCheck"`
	Rules     []Rule `yaml:"rules"`
	// Unique rejects arrays holding the same choice twice.
	Unique bool `yaml:"unique"`
	// Options names an entry of Definition.Options offered as choices.
	Options string `yaml:"options"`
}

// Rule is a single constraint. Exactly one of Min, Max, Email or Pattern is
// expected; Min and Max bound length for strings and arrays.
type Rule struct {
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Email   bool     `yaml:"email"`
	Pattern string   `yaml:"pattern"`
	Message string   `yaml:"message"`
}

// Option is a selectable choice.
type Option struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// ErrInvalidDefinition wraps every definition validation failure.
var ErrInvalidDefinition = errors.New("survey: invalid definition")

// Load decodes and checks a YAML definition.
func Load(r io.Reader) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("survey: decode: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadFile reads a definition from path.
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("survey: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in developer survey.
func Default() *Definition {
	def, err := Load(bytes.NewReader(defaultSurvey))
	if err != nil {
		panic(err)
	}
	return def
}

// Validate reports the first structural problem of the definition.
func (d *Definition) Validate() error {
	if len(d.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidDefinition)
	}
	seen := map[string]bool{}
	sections := map[string]bool{}
	for i, st := range d.Steps {
		if err := fieldpath.Check(st.Section); err != nil {
			return fmt.Errorf("%w: step %d section: %w", ErrInvalidDefinition, i+1, err)
		}
		if sections[st.Section] {
			return fmt.Errorf("%w: step %d reuses section %q", ErrInvalidDefinition, i+1, st.Section)
		}
		sections[st.Section] = true
		for _, fd := range st.Fields {
			path := st.Section + "." + fd.Name
			if err := fieldpath.Check(path); err != nil {
				return fmt.Errorf("%w: step %d: %w", ErrInvalidDefinition, i+1, err)
			}
			if seen[path] {
				return fmt.Errorf("%w: duplicate field %q", ErrInvalidDefinition, path)
			}
			seen[path] = true
			if err := fd.check(d); err != nil {
				return fmt.Errorf("%w: field %q: %w", ErrInvalidDefinition, path, err)
			}
		}
	}
	return nil
}

func (fd Field) check(d *Definition) error {
	switch fd.Type {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray:
	default:
		return fmt.Errorf("unknown type %q", fd.Type)
	}
	if fd.Options != "" {
		if _, ok := d.Options[fd.Options]; !ok {
			return fmt.Errorf("unknown options %q", fd.Options)
		}
	}
	if fd.Unique && fd.Type != TypeArray {
		return fmt.Errorf("unique on %s field", fd.Type)
	}
	for _, r := range fd.Rules {
		if (r.Email || r.Pattern != "") && fd.Type != TypeString {
			return fmt.Errorf("email/pattern rule on %s field", fd.Type)
		}
		if r.Pattern != "" {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return fmt.Errorf("pattern: %w", err)
			}
		}
		if (r.Min != nil || r.Max != nil) && fd.Type == TypeBoolean {
			return errors.New("min/max rule on boolean field")
		}
	}
	return nil
}

// TotalSteps returns the number of steps.
func (d *Definition) TotalSteps() int { return len(d.Steps) }

// FieldsForStep returns the qualified paths validated when leaving step n
// (1-based). Out-of-range steps have no fields.
func (d *Definition) FieldsForStep(n int) []string {
	if n < 1 || n > len(d.Steps) {
		return nil
	}
	st := d.Steps[n-1]
	out := make([]string, 0, len(st.Fields))
	for _, fd := range st.Fields {
		if fd.StepCheck != nil && !*fd.StepCheck {
			continue
		}
		out = append(out, st.Section+"."+fd.Name)
	}
	return out
}

// OptionsFor returns the choices declared for the field at path.
func (d *Definition) OptionsFor(path string) []Option {
	for _, st := range d.Steps {
		for _, fd := range st.Fields {
			if st.Section+"."+fd.Name == path && fd.Options != "" {
				return d.Options[fd.Options]
			}
		}
	}
	return nil
}

// Defaults builds the initial value tree. Fields without an explicit default
// start from their type's empty value, or nil when nullable.
func (d *Definition) Defaults() map[string]any {
	out := map[string]any{}
	for _, st := range d.Steps {
		sec := map[string]any{}
		for _, fd := range st.Fields {
			sec[fd.Name] = fd.defaultValue()
		}
		out[st.Section] = sec
	}
	return out
}

func (fd Field) defaultValue() any {
	if fd.Default != nil {
		return fd.Default
	}
	if fd.Nullable {
		return nil
	}
	switch fd.Type {
	case TypeString:
		return ""
	case TypeNumber, TypeInteger:
		return 0
	case TypeBoolean:
		return false
	case TypeArray:
		return []any{}
	}
	return nil
}

// validators returns the field-level validators registered on the form.
func (fd Field) validators() []goform.Validator {
	if !fd.Unique {
		return nil
	}
	return []goform.Validator{rules.Unique("", "Choices must be unique")}
}

// Schema builds the whole-tree schema: one object per section.
func (d *Definition) Schema() goform.Schema { return d.object() }

// JSONSchema exports the whole-tree schema.
func (d *Definition) JSONSchema() *js.Schema { return d.object().JSONSchema() }

func (d *Definition) object() *g.ObjectSchema {
	root := g.Object()
	for _, st := range d.Steps {
		sec := g.Object()
		for _, fd := range st.Fields {
			sec.Field(fd.Name, fd.node())
		}
		root.Field(st.Section, sec)
	}
	return root
}

func (fd Field) node() g.Node {
	var n g.Node
	switch fd.Type {
	case TypeString:
		s := g.String()
		for _, r := range fd.Rules {
			if r.Min != nil {
				s.Min(int(*r.Min), r.Message)
			}
			if r.Max != nil {
				s.Max(int(*r.Max), r.Message)
			}
			if r.Email {
				s.Email(r.Message)
			}
			if r.Pattern != "" {
				s.Pattern(r.Pattern, r.Message)
			}
		}
		n = s
	case TypeNumber, TypeInteger:
		s := g.Number()
		if fd.Type == TypeInteger {
			s.Int()
		}
		for _, r := range fd.Rules {
			if r.Min != nil {
				s.Min(*r.Min, r.Message)
			}
			if r.Max != nil {
				s.Max(*r.Max, r.Message)
			}
		}
		n = s
	case TypeBoolean:
		n = g.Bool()
	case TypeArray:
		s := g.Array(g.String())
		for _, r := range fd.Rules {
			if r.Min != nil {
				s.Min(int(*r.Min), r.Message)
			}
			if r.Max != nil {
				s.Max(int(*r.Max), r.Message)
			}
		}
		n = s
	}
	if fd.Nullable {
		n = g.Nullable(n)
	}
	if fd.Optional {
		n = g.Optional(n)
	}
	return n
}
