package goform

import (
	"sync"

	"github.com/reoring/goform/fieldpath"
	"github.com/reoring/goform/internal/tree"
)

// StopFunc detaches a watcher.
type StopFunc func()

// Watch calls fn with a clone of the whole tree after every write that
// changes it.
func (f *Form) Watch(fn func(values map[string]any)) StopFunc {
	return f.watch(func(values map[string]any) any { return values }, func(_ any, values map[string]any) {
		fn(values)
	})
}

// WatchField calls fn when the value at name changes.
func (f *Form) WatchField(name string, fn func(value any, values map[string]any)) StopFunc {
	_, p := canonical(name)
	return f.watch(func(values map[string]any) any {
		v, _ := fieldpath.Get(values, p)
		return v
	}, fn)
}

// WatchFields calls fn with the values at names whenever any of them changes.
func (f *Form) WatchFields(names []string, fn func(vals []any, values map[string]any)) StopFunc {
	paths := make([]fieldpath.Path, len(names))
	for i, n := range names {
		_, paths[i] = canonical(n)
	}
	return f.watch(func(values map[string]any) any {
		out := make([]any, len(paths))
		for i, p := range paths {
			out[i], _ = fieldpath.Get(values, p)
		}
		return out
	}, func(sel any, values map[string]any) {
		fn(sel.([]any), values)
	})
}

// watch compares the selected part of each new snapshot with the last one
// it delivered and calls fn only on a difference.
func (f *Form) watch(selectFn func(values map[string]any) any, fn func(selected any, values map[string]any)) StopFunc {
	var mu sync.Mutex
	last := selectFn(f.GetValues())
	stopped := false

	unsubscribe := f.Subscribe(EventValuesChange, func(Event) {
		values := f.GetValues()
		sel := selectFn(values)
		mu.Lock()
		if stopped || tree.Equal(sel, last) {
			mu.Unlock()
			return
		}
		last = tree.Clone(sel)
		mu.Unlock()
		fn(sel, values)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			stopped = true
			mu.Unlock()
			unsubscribe()
		})
	}
}
