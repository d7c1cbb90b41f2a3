package survey

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reoring/goform"
	"github.com/reoring/goform/internal/tree"
)

// WizardOptions configures NewWizard.
type WizardOptions struct {
	// Values overrides the definition's defaults as the initial tree.
	Values map[string]any
	Logger *slog.Logger
}

// Wizard walks a Definition step by step over one onBlur form. Moving
// forward requires the current step's fields to validate; moving back never
// does.
type Wizard struct {
	def  *Definition
	form *goform.Form
	log  *slog.Logger

	mu        sync.Mutex
	step      int
	submitted map[string]any
}

// NewWizard builds the form for def and registers every field.
func NewWizard(ctx context.Context, def *Definition, opts WizardOptions) (*Wizard, error) {
	values := opts.Values
	if values == nil {
		values = def.Defaults()
	}
	lg := opts.Logger
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	f, err := goform.New(ctx, goform.Options{
		DefaultValues: values,
		Schema:        def.Schema(),
		Mode:          goform.ModeOnBlur,
		Logger:        lg,
	})
	if err != nil {
		return nil, fmt.Errorf("survey: new form: %w", err)
	}
	for _, st := range def.Steps {
		for _, fd := range st.Fields {
			f.Register(st.Section+"."+fd.Name, goform.RegisterOptions{Validate: fd.validators()})
		}
	}
	return &Wizard{def: def, form: f, log: lg.With(slog.String("survey", def.Title)), step: 1}, nil
}

// Form exposes the underlying form.
func (w *Wizard) Form() *goform.Form { return w.form }

// Definition returns the survey being walked.
func (w *Wizard) Definition() *Definition { return w.def }

// Field returns the binding for the field at path.
func (w *Wizard) Field(path string) *goform.Binding {
	return w.form.Register(path, goform.RegisterOptions{})
}

// CurrentStep returns the 1-based current step.
func (w *Wizard) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// TotalSteps returns the number of steps.
func (w *Wizard) TotalSteps() int { return w.def.TotalSteps() }

// ValidateCurrentStep validates the current step's checked fields only.
func (w *Wizard) ValidateCurrentStep(ctx context.Context) bool {
	fields := w.def.FieldsForStep(w.CurrentStep())
	if len(fields) == 0 {
		return true
	}
	return w.form.Validate(ctx, fields...)
}

// NextStep advances when the current step validates and is not the last.
// It reports whether the step changed.
func (w *Wizard) NextStep(ctx context.Context) bool {
	from := w.CurrentStep()
	if !w.ValidateCurrentStep(ctx) {
		w.log.DebugContext(ctx, "step blocked", slog.Int("step", from))
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != from || w.step >= w.def.TotalSteps() {
		return false
	}
	w.step++
	return true
}

// PrevStep goes back one step unless already on the first.
func (w *Wizard) PrevStep() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step <= 1 {
		return false
	}
	w.step--
	return true
}

// GoToStep jumps to any earlier step, or to the next one after validating
// the current step. Other targets are ignored.
func (w *Wizard) GoToStep(ctx context.Context, step int) bool {
	cur := w.CurrentStep()
	switch {
	case step < 1 || step > w.def.TotalSteps():
		return false
	case step <= cur:
	case step == cur+1:
		if !w.ValidateCurrentStep(ctx) {
			return false
		}
	default:
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != cur {
		return false
	}
	w.step = step
	return true
}

// Submit validates the whole survey. On success the values are kept and
// returned by Submitted. It reports whether the survey was valid.
func (w *Wizard) Submit(ctx context.Context) (bool, error) {
	valid := false
	submit := w.form.HandleSubmit(func(_ context.Context, values map[string]any) error {
		valid = true
		w.mu.Lock()
		w.submitted = values
		w.mu.Unlock()
		return nil
	}, nil)
	if err := submit(ctx); err != nil {
		return false, err
	}
	return valid, nil
}

// Submitted returns a clone of the last successfully submitted values, or
// nil.
func (w *Wizard) Submitted() map[string]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitted == nil {
		return nil
	}
	return tree.CloneMap(w.submitted)
}

// Reset clears the submission, returns to the first step and resets the form.
func (w *Wizard) Reset(ctx context.Context) {
	w.mu.Lock()
	w.submitted = nil
	w.step = 1
	w.mu.Unlock()
	w.form.Reset(ctx, nil)
}

// IsSubmitting mirrors the form state.
func (w *Wizard) IsSubmitting() bool { return w.form.FormState().IsSubmitting }

// IsDirty mirrors the form state.
func (w *Wizard) IsDirty() bool { return w.form.FormState().IsDirty }

// StepErrors returns the current errors of the current step's fields.
func (w *Wizard) StepErrors() map[string]string {
	errs := w.form.Errors()
	out := map[string]string{}
	for _, p := range w.def.FieldsForStep(w.CurrentStep()) {
		if msg, ok := errs[p]; ok {
			out[p] = msg
		}
	}
	return out
}
