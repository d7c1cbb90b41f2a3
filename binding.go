package goform

import (
	"context"
	"strconv"

	"github.com/reoring/goform/internal/tree"
)

// InputEvent is the control-side payload a binding understands. Type follows
// HTML input types ("text", "number", "checkbox", ...).
type InputEvent struct {
	Type    string
	Value   string
	Checked bool
}

// Binding connects one registered field to an input control. Obtain it from
// Form.Register; the same Binding is returned while the field stays
// registered.
type Binding struct {
	form *Form
	name string
}

// Name returns the canonical field name.
func (b *Binding) Name() string { return b.name }

// Value returns a clone of the field's current value.
func (b *Binding) Value() any { return b.form.GetValue(b.name) }

// Set writes v as a user edit: the field becomes dirty, is not touched, and
// validates when its trigger (or the form's) is "change".
func (b *Binding) Set(ctx context.Context, v any) {
	f := b.form
	f.mu.Lock()
	validate := f.validatesOnChange(f.ensureConfig(b.name))
	f.mu.Unlock()
	f.SetValue(ctx, b.name, v, ShouldDirty(true), ShouldTouch(false), ShouldValidate(validate))
}

// OnInput resolves input (an InputEvent, a raw value, or nil) and sets it.
func (b *Binding) OnInput(ctx context.Context, input any) { b.Set(ctx, b.resolve(input)) }

// OnChange behaves like OnInput.
func (b *Binding) OnChange(ctx context.Context, input any) { b.Set(ctx, b.resolve(input)) }

// OnBlur marks the field touched and validates it when either the field's
// trigger or the form's is "blur". It reports the validation verdict, or
// true when no validation ran.
func (b *Binding) OnBlur(ctx context.Context) bool {
	f := b.form
	f.mu.Lock()
	f.ensureState(b.name).Touched = true
	run := f.ensureConfig(b.name).validateOn == TriggerBlur || f.trigger == TriggerBlur
	f.mu.Unlock()
	if !run {
		return true
	}
	return f.validateField(ctx, b.name, nil)
}

// Checked reports the truthiness of the current value.
func (b *Binding) Checked() bool { return truthy(b.Value()) }

// SetChecked writes v through Set; it is the checked-control counterpart of Set.
func (b *Binding) SetChecked(ctx context.Context, v bool) { b.Set(ctx, v) }

func (b *Binding) resolve(input any) any {
	f := b.form
	f.mu.Lock()
	cfg := *f.ensureConfig(b.name)
	f.mu.Unlock()

	if cfg.parse != nil {
		return cfg.parse(input, FieldContext{Name: b.name, Values: f.GetValues()})
	}

	var ev *InputEvent
	switch e := input.(type) {
	case InputEvent:
		ev = &e
	case *InputEvent:
		ev = e
	}
	if ev != nil {
		switch {
		case cfg.valueProp == ValuePropChecked || ev.Type == "checkbox":
			if cfg.hasTrue || cfg.hasFalse {
				if ev.Checked {
					return tree.Clone(cfg.trueValue)
				}
				return tree.Clone(cfg.falseValue)
			}
			return ev.Checked
		case ev.Type == "number":
			if ev.Value == "" {
				return nil
			}
			n, err := strconv.ParseFloat(ev.Value, 64)
			if err != nil {
				return ev.Value
			}
			return n
		}
		return ev.Value
	}

	if input == nil {
		return b.Value()
	}
	return input
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if n, ok := tree.Number(v); ok {
		return n != 0
	}
	return true
}
