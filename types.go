package goform

import (
	"context"
	"fmt"
	"log/slog"
)

// Mode selects the form-wide default validation trigger.
type Mode string

const (
	ModeOnSubmit Mode = "onSubmit" // Validate on submit (default).
	ModeOnBlur   Mode = "onBlur"   // Validate when a field loses focus.
	ModeOnChange Mode = "onChange" // Validate on every value change.
)

// Trigger is the event that activates a field's validation.
type Trigger string

const (
	TriggerSubmit Trigger = "submit"
	TriggerBlur   Trigger = "blur"
	TriggerChange Trigger = "change"
)

// Trigger maps a Mode to its default Trigger. The zero Mode means onSubmit.
func (m Mode) Trigger() (Trigger, error) {
	switch m {
	case "", ModeOnSubmit:
		return TriggerSubmit, nil
	case ModeOnBlur:
		return TriggerBlur, nil
	case ModeOnChange:
		return TriggerChange, nil
	}
	return "", fmt.Errorf("goform: unknown mode %q", string(m))
}

// Options configures a Form.
type Options struct {
	// DefaultValues seeds the value tree and the dirty baseline.
	DefaultValues map[string]any
	// Schema validates the whole tree and supplies defaults for missing fields.
	Schema Schema
	// Mode selects the default trigger; individual fields may override it.
	Mode Mode
	// Logger receives debug records about validation and submission. nil discards.
	Logger *slog.Logger
}

// ValueProp names the event property a binding reads its value from.
type ValueProp string

const (
	ValuePropValue   ValueProp = "value"
	ValuePropChecked ValueProp = "checked"
)

// FieldContext is handed to validators and parse functions.
type FieldContext struct {
	// Name is the canonical field name.
	Name string
	// Values is a snapshot of the whole value tree.
	Values map[string]any
}

// Validator checks a field value. Accepted results:
//
//	true, nil      pass
//	false          fail with the field's default error
//	string         fail with that message ("" passes)
//	[]string       fail with the non-empty members joined by "\n" (none passes)
//	error          fail with err.Error()
//
// Validators may block; they run without any form lock held.
type Validator func(ctx context.Context, value any, fc FieldContext) any

// ParseFunc coerces raw binding input into the stored value.
type ParseFunc func(input any, fc FieldContext) any

// RegisterOptions configures a field at registration. Zero values leave the
// current configuration untouched.
type RegisterOptions struct {
	DefaultValue any
	Validate     []Validator
	ValidateOn   Trigger
	Parse        ParseFunc
	ValueProp    ValueProp
	TrueValue    any
	FalseValue   any
	DefaultError string
}

// UnregisterOptions opts out of either half of the unregister cleanup.
type UnregisterOptions struct {
	// KeepState keeps validators, flags and the error for the field.
	KeepState bool
	// KeepValue leaves the field's value in the tree.
	KeepValue bool
}

// SetOption adjusts a single SetValue call.
type SetOption func(*setOptions)

type setOptions struct {
	dirty, touch, validate *bool
}

// ShouldDirty forces the dirty flag instead of comparing with the default.
func ShouldDirty(b bool) SetOption { return func(o *setOptions) { o.dirty = &b } }

// ShouldTouch marks (or not) the field as touched.
func ShouldTouch(b bool) SetOption { return func(o *setOptions) { o.touch = &b } }

// ShouldValidate forces (or suppresses) validation after the write.
func ShouldValidate(b bool) SetOption { return func(o *setOptions) { o.validate = &b } }

// FieldState is the runtime status of one field.
type FieldState struct {
	Touched      bool
	Dirty        bool
	Error        string
	IsValidating bool
	Validators   []Validator
	ValidateOn   Trigger
}

// FormState is the aggregate view derived from all field states.
type FormState struct {
	IsDirty       bool
	IsValid       bool
	IsSubmitting  bool
	IsValidating  bool
	SubmitCount   int
	DirtyFields   map[string]bool
	TouchedFields map[string]bool
	Errors        map[string]string
}

// SubmitHandler receives a deep clone of the values of a valid form.
type SubmitHandler func(ctx context.Context, values map[string]any) error

// InvalidSubmitHandler receives the error map and a clone of the values.
type InvalidSubmitHandler func(ctx context.Context, errors map[string]string, values map[string]any) error
