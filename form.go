package goform

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/reoring/goform/fieldpath"
	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/internal/tree"
)

// Form owns one value tree, its default snapshot, and every field's state
// and configuration. All methods are safe for concurrent use; validators,
// the schema, listeners and watchers are invoked without the form lock held.
type Form struct {
	id      string
	log     *slog.Logger
	schema  Schema
	trigger Trigger

	mu           sync.Mutex
	values       map[string]any
	defaults     map[string]any
	states       map[string]*FieldState
	configs      map[string]*fieldConfig
	bindings     map[string]*Binding
	gens         map[string]uint64
	lastGen      uint64
	isSubmitting bool
	submitCount  int

	lmu          sync.Mutex
	listeners    map[EventName][]listenerEntry
	nextListener uint64
}

// fieldConfig holds "how to validate/coerce" for one field.
type fieldConfig struct {
	validators   []Validator
	validateOn   Trigger
	parse        ParseFunc
	valueProp    ValueProp
	trueValue    any
	falseValue   any
	hasTrue      bool
	hasFalse     bool
	defaultError string
}

// New builds a Form. Initial values are the schema-parsed DefaultValues,
// else the schema-parsed empty object, else a clone of DefaultValues.
func New(ctx context.Context, opts Options) (*Form, error) {
	trig, err := opts.Mode.Trigger()
	if err != nil {
		return nil, err
	}
	lg := opts.Logger
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	id := uuid.NewString()
	initial := prepareInitialValues(ctx, opts.DefaultValues, opts.Schema)
	f := &Form{
		id:        id,
		log:       lg.With(slog.String("form", id)),
		schema:    opts.Schema,
		trigger:   trig,
		values:    tree.CloneMap(initial),
		defaults:  tree.CloneMap(initial),
		states:    map[string]*FieldState{},
		configs:   map[string]*fieldConfig{},
		bindings:  map[string]*Binding{},
		gens:      map[string]uint64{},
		listeners: map[EventName][]listenerEntry{},
	}
	return f, nil
}

// ID returns the form instance identifier used in log records.
func (f *Form) ID() string { return f.id }

// Trigger returns the form-wide default validation trigger.
func (f *Form) Trigger() Trigger { return f.trigger }

func canonical(name string) (string, fieldpath.Path) {
	p := fieldpath.Parse(name)
	return p.String(), p
}

// ensureState must be called with f.mu held.
func (f *Form) ensureState(name string) *FieldState {
	st, ok := f.states[name]
	if !ok {
		st = &FieldState{ValidateOn: f.trigger}
		f.states[name] = st
	}
	return st
}

// ensureConfig must be called with f.mu held.
func (f *Form) ensureConfig(name string) *fieldConfig {
	cfg, ok := f.configs[name]
	if !ok {
		cfg = &fieldConfig{
			validateOn:   f.trigger,
			valueProp:    ValuePropValue,
			defaultError: i18n.T(CodeInvalidValue, nil),
		}
		f.configs[name] = cfg
	}
	return cfg
}

// validatesOnChange applies the trigger precedence for value writes: a field
// set to "change" validates, and so does a field left on "submit" when the
// form-wide trigger is "change".
func (f *Form) validatesOnChange(cfg *fieldConfig) bool {
	return cfg.validateOn == TriggerChange || (cfg.validateOn == TriggerSubmit && f.trigger == TriggerChange)
}

// EnsureFieldState returns the state for name, creating it when needed.
func (f *Form) EnsureFieldState(name string) FieldState {
	name, _ = canonical(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyState(f.ensureState(name))
}

// FieldState returns a copy of the state for name.
func (f *Form) FieldState(name string) (FieldState, bool) {
	name, _ = canonical(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[name]
	if !ok {
		return FieldState{}, false
	}
	return copyState(st), true
}

func copyState(st *FieldState) FieldState {
	out := *st
	out.Validators = slices.Clone(st.Validators)
	return out
}

// Register configures name and returns its binding. The tree is seeded with
// DefaultValue (or the default snapshot's value) only when the field has no
// value yet. The binding is cached, so repeated calls return the same one.
func (f *Form) Register(name string, opts RegisterOptions) *Binding {
	name, p := canonical(name)
	f.mu.Lock()
	seeded := false
	dv := opts.DefaultValue
	if dv == nil {
		dv, _ = fieldpath.Get(f.defaults, p)
	}
	if _, ok := fieldpath.Get(f.values, p); !ok && dv != nil {
		seeded = fieldpath.Set(f.values, p, tree.Clone(dv))
	}

	cfg := f.ensureConfig(name)
	st := f.ensureState(name)
	if len(opts.Validate) > 0 {
		cfg.validators = slices.Clone(opts.Validate)
		st.Validators = slices.Clone(opts.Validate)
	}
	if opts.ValidateOn != "" {
		cfg.validateOn = opts.ValidateOn
	}
	st.ValidateOn = cfg.validateOn
	cfg.parse = opts.Parse
	if opts.ValueProp != "" {
		cfg.valueProp = opts.ValueProp
	}
	if opts.TrueValue != nil {
		cfg.trueValue, cfg.hasTrue = opts.TrueValue, true
	}
	if opts.FalseValue != nil {
		cfg.falseValue, cfg.hasFalse = opts.FalseValue, true
	}
	if opts.DefaultError != "" {
		cfg.defaultError = opts.DefaultError
	}

	b, ok := f.bindings[name]
	if !ok {
		b = &Binding{form: f, name: name}
		f.bindings[name] = b
	}
	f.mu.Unlock()

	if seeded {
		f.emit(Event{Name: EventValuesChange, Field: name})
	}
	return b
}

// Unregister drops the field's value from the tree and discards its state,
// configuration, binding and error. Each half can be kept independently.
func (f *Form) Unregister(name string, opts UnregisterOptions) {
	name, p := canonical(name)
	f.mu.Lock()
	if !opts.KeepValue {
		fieldpath.Unset(f.values, p)
	}
	if !opts.KeepState {
		delete(f.bindings, name)
		delete(f.configs, name)
		delete(f.gens, name)
		delete(f.states, name)
	}
	f.mu.Unlock()

	if !opts.KeepValue {
		f.emit(Event{Name: EventValuesChange, Field: name})
	}
}

// SetValue writes value at name and updates the field's flags. A path that
// cannot be written (through a scalar, or an index too far past the end of
// a slice) leaves the form untouched. The
// values:change event is emitted synchronously after the write; validation,
// when it applies, runs afterwards and SetValue returns once it settles.
func (f *Form) SetValue(ctx context.Context, name string, value any, opts ...SetOption) {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	name, p := canonical(name)

	f.mu.Lock()
	cfg := f.ensureConfig(name)
	st := f.ensureState(name)
	def, _ := fieldpath.Get(f.defaults, p)
	dirty := !tree.Equal(value, def) || st.Dirty
	if o.dirty != nil {
		dirty = *o.dirty
	}
	validate := f.validatesOnChange(cfg)
	if o.validate != nil {
		validate = *o.validate
	}
	if !fieldpath.Set(f.values, p, tree.Clone(value)) {
		f.mu.Unlock()
		f.log.DebugContext(ctx, "set ignored: path not writable", slog.String("field", name))
		return
	}
	st.Dirty = dirty
	if o.touch != nil && *o.touch {
		st.Touched = true
	}
	f.mu.Unlock()

	f.emit(Event{Name: EventValuesChange, Field: name})

	if validate {
		f.validateField(ctx, name, nil)
	}
}

// GetValue returns a clone of the value at name (nil when unresolved).
func (f *Form) GetValue(name string) any {
	_, p := canonical(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	v, _ := fieldpath.Get(f.values, p)
	return tree.Clone(v)
}

// GetValues returns a deep clone of the whole value tree.
func (f *Form) GetValues() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return tree.CloneMap(f.values)
}

// DefaultValues returns a clone of the default snapshot.
func (f *Form) DefaultValues() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return tree.CloneMap(f.defaults)
}

// Reset restores the tree to the default snapshot, or, when values is not
// nil, to the values resolved through the schema (which also become the new
// snapshot). Every field's flags and error are cleared and in-flight
// validations are superseded. Emits reset, then values:change.
func (f *Form) Reset(ctx context.Context, values map[string]any) {
	var next map[string]any
	if values != nil {
		next = prepareInitialValues(ctx, values, f.schema)
	}

	f.mu.Lock()
	if next == nil {
		next = tree.CloneMap(f.defaults)
	} else {
		f.defaults = tree.CloneMap(next)
	}
	tree.ReplaceInPlace(f.values, next)
	for name, st := range f.states {
		st.Dirty = false
		st.Touched = false
		st.Error = ""
		st.IsValidating = false
		f.lastGen++
		f.gens[name] = f.lastGen
	}
	f.mu.Unlock()

	f.log.DebugContext(ctx, "form reset", slog.Bool("new_defaults", values != nil))
	f.emit(Event{Name: EventReset})
	f.emit(Event{Name: EventValuesChange})
}

// ClearErrors clears the errors of the named fields, or of every field when
// none are named. Dirty/touched flags and validators are left untouched.
func (f *Form) ClearErrors(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(names) == 0 {
		for _, st := range f.states {
			st.Error = ""
		}
		return
	}
	for _, n := range names {
		n, _ = canonical(n)
		if st, ok := f.states[n]; ok {
			st.Error = ""
		}
	}
}

// SetError attaches message to name, bypassing validators.
func (f *Form) SetError(name, message string) {
	name, _ = canonical(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureState(name).Error = message
}

// Errors returns the current field errors keyed by field name.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errorsLocked()
}

func (f *Form) errorsLocked() map[string]string {
	out := map[string]string{}
	for name, st := range f.states {
		if st.Error != "" {
			out[name] = st.Error
		}
	}
	return out
}

// FormState derives the aggregate view from all field states.
func (f *Form) FormState() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	fs := FormState{
		IsSubmitting:  f.isSubmitting,
		SubmitCount:   f.submitCount,
		DirtyFields:   make(map[string]bool, len(f.states)),
		TouchedFields: make(map[string]bool, len(f.states)),
		Errors:        f.errorsLocked(),
	}
	for name, st := range f.states {
		fs.DirtyFields[name] = st.Dirty
		fs.TouchedFields[name] = st.Touched
		fs.IsDirty = fs.IsDirty || st.Dirty
		fs.IsValidating = fs.IsValidating || st.IsValidating
	}
	fs.IsValid = len(fs.Errors) == 0
	return fs
}

// fieldNames returns the known field names in sorted order.
func (f *Form) fieldNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.states))
	for name := range f.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
