package goform

import (
	"context"
	"log/slog"
)

// HandleSubmit returns a submit function. Each call bumps the submit count,
// validates every field, then hands a clone of the values to onValid, or the
// error map to onInvalid. IsSubmitting is cleared on every exit path,
// including a handler error or panic, which propagate to the caller.
func (f *Form) HandleSubmit(onValid SubmitHandler, onInvalid InvalidSubmitHandler) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		f.mu.Lock()
		f.submitCount++
		count := f.submitCount
		f.isSubmitting = true
		f.mu.Unlock()
		defer func() {
			f.mu.Lock()
			f.isSubmitting = false
			f.mu.Unlock()
		}()

		valid := f.Validate(ctx)
		f.log.DebugContext(ctx, "form submitted", slog.Int("count", count), slog.Bool("valid", valid))
		if valid {
			if onValid == nil {
				return nil
			}
			return onValid(ctx, f.GetValues())
		}
		if onInvalid == nil {
			return nil
		}
		return onInvalid(ctx, f.Errors(), f.GetValues())
	}
}
