// Package fieldarray keeps a keyed row list in sync with an array-valued
// form field and offers array mutation verbs that commit through the form.
package fieldarray

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/reoring/goform"
	"github.com/reoring/goform/internal/tree"
)

// Control is the part of *goform.Form a FieldArray needs.
type Control interface {
	GetValue(name string) any
	SetValue(ctx context.Context, name string, value any, opts ...goform.SetOption)
	EnsureFieldState(name string) goform.FieldState
	Subscribe(name goform.EventName, l goform.Listener) (unsubscribe func())
}

// Field is one row of the array. ID stays with the logical row across
// reordering and splicing.
type Field struct {
	ID    string
	Value any
	Index int
}

// FieldArray shadows the array stored at Name.
type FieldArray struct {
	ctl  Control
	name string

	mu         sync.Mutex
	ids        []string
	values     []any
	counter    int
	committing atomic.Bool
	unsubs     []func()
}

// New attaches a FieldArray to name and performs the initial sync. Call
// Close to detach it.
func New(ctl Control, name string) *FieldArray {
	fa := &FieldArray{ctl: ctl, name: name}
	ctl.EnsureFieldState(name)
	fa.unsubs = append(fa.unsubs,
		ctl.Subscribe(goform.EventReset, func(goform.Event) {
			fa.mu.Lock()
			fa.counter = 0
			fa.ids = nil
			fa.mu.Unlock()
			fa.sync()
		}),
		ctl.Subscribe(goform.EventValuesChange, func(goform.Event) {
			if !fa.committing.Load() {
				fa.sync()
			}
		}),
	)
	fa.sync()
	return fa
}

// Close stops following the form.
func (fa *FieldArray) Close() {
	for _, u := range fa.unsubs {
		u()
	}
	fa.unsubs = nil
}

// Name returns the array's field name.
func (fa *FieldArray) Name() string { return fa.name }

// Fields returns a snapshot of the rows.
func (fa *FieldArray) Fields() []Field {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	out := make([]Field, len(fa.values))
	for i, v := range fa.values {
		out[i] = Field{ID: fa.ids[i], Value: tree.Clone(v), Index: i}
	}
	return out
}

// Len returns the number of rows.
func (fa *FieldArray) Len() int {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return len(fa.values)
}

// mint must be called with fa.mu held.
func (fa *FieldArray) mint() string {
	id := fa.name + "-" + strconv.Itoa(fa.counter)
	fa.counter++
	return id
}

// sync rebuilds rows from the stored value, keeping IDs by position.
func (fa *FieldArray) sync() {
	arr := current(fa.ctl.GetValue(fa.name))
	fa.mu.Lock()
	defer fa.mu.Unlock()
	ids := make([]string, len(arr))
	for i := range arr {
		if i < len(fa.ids) {
			ids[i] = fa.ids[i]
		} else {
			ids[i] = fa.mint()
		}
	}
	fa.ids, fa.values = ids, arr
}

func current(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

// row pairs a value with its ID; an empty ID is minted on commit.
type row struct {
	id    string
	value any
}

// rows returns the current stored array paired with the known IDs.
func (fa *FieldArray) rows() []row {
	arr := current(fa.ctl.GetValue(fa.name))
	fa.mu.Lock()
	defer fa.mu.Unlock()
	out := make([]row, len(arr))
	for i, v := range arr {
		out[i].value = v
		if i < len(fa.ids) {
			out[i].id = fa.ids[i]
		}
	}
	return out
}

// commit writes next through the form, then adopts its IDs. Defaults are
// dirty and touched without validation; opts override them.
func (fa *FieldArray) commit(ctx context.Context, next []row, opts ...goform.SetOption) {
	payload := make([]any, len(next))
	for i, r := range next {
		payload[i] = r.value
	}
	all := append([]goform.SetOption{goform.ShouldDirty(true), goform.ShouldTouch(true), goform.ShouldValidate(false)}, opts...)

	fa.committing.Store(true)
	fa.ctl.SetValue(ctx, fa.name, payload, all...)
	fa.committing.Store(false)

	fa.mu.Lock()
	defer fa.mu.Unlock()
	ids := make([]string, len(next))
	for i, r := range next {
		if r.id == "" {
			r.id = fa.mint()
		}
		ids[i] = r.id
	}
	fa.ids, fa.values = ids, tree.Clone(payload).([]any)
}

func valid(rows []row, i int) bool { return i >= 0 && i < len(rows) }

// Append adds value at the end.
func (fa *FieldArray) Append(ctx context.Context, value any, opts ...goform.SetOption) {
	fa.commit(ctx, append(fa.rows(), row{value: tree.Clone(value)}), opts...)
}

// Prepend adds value at the front.
func (fa *FieldArray) Prepend(ctx context.Context, value any, opts ...goform.SetOption) {
	fa.Insert(ctx, 0, value, opts...)
}

// Insert places value before index. An index past the end appends; a
// negative index is ignored.
func (fa *FieldArray) Insert(ctx context.Context, index int, value any, opts ...goform.SetOption) {
	rows := fa.rows()
	if index < 0 {
		return
	}
	index = min(index, len(rows))
	next := make([]row, 0, len(rows)+1)
	next = append(next, rows[:index]...)
	next = append(next, row{value: tree.Clone(value)})
	next = append(next, rows[index:]...)
	fa.commit(ctx, next, opts...)
}

// Remove deletes the rows at indexes. Duplicates and out-of-range indexes
// are ignored. The field is always revalidated.
func (fa *FieldArray) Remove(ctx context.Context, indexes ...int) {
	rows := fa.rows()
	drop := map[int]bool{}
	for _, i := range indexes {
		if valid(rows, i) {
			drop[i] = true
		}
	}
	next := make([]row, 0, len(rows))
	for i, r := range rows {
		if !drop[i] {
			next = append(next, r)
		}
	}
	fa.commit(ctx, next, goform.ShouldValidate(true))
}

// Swap exchanges rows a and b.
func (fa *FieldArray) Swap(ctx context.Context, a, b int) {
	if a == b {
		return
	}
	rows := fa.rows()
	if !valid(rows, a) || !valid(rows, b) {
		return
	}
	rows[a], rows[b] = rows[b], rows[a]
	fa.commit(ctx, rows)
}

// Move takes the row at from out and reinserts it at to.
func (fa *FieldArray) Move(ctx context.Context, from, to int) {
	rows := fa.rows()
	if !valid(rows, from) || !valid(rows, to) {
		return
	}
	r := rows[from]
	rows = append(rows[:from], rows[from+1:]...)
	next := make([]row, 0, len(rows)+1)
	next = append(next, rows[:to]...)
	next = append(next, r)
	next = append(next, rows[to:]...)
	fa.commit(ctx, next)
}

// Replace swaps in a new set of rows, all with fresh IDs.
func (fa *FieldArray) Replace(ctx context.Context, values []any, opts ...goform.SetOption) {
	next := make([]row, len(values))
	for i, v := range values {
		next[i] = row{value: tree.Clone(v)}
	}
	fa.commit(ctx, next, opts...)
}

// Update shallow-merges value into an object row, or replaces a non-object
// row. The row keeps its ID.
func (fa *FieldArray) Update(ctx context.Context, index int, value any, opts ...goform.SetOption) {
	rows := fa.rows()
	if !valid(rows, index) {
		return
	}
	cur, curObj := rows[index].value.(map[string]any)
	patch, patchObj := tree.Clone(value).(map[string]any)
	if curObj && patchObj {
		merged := tree.CloneMap(cur)
		for k, v := range patch {
			merged[k] = v
		}
		rows[index].value = merged
	} else {
		rows[index].value = tree.Clone(value)
	}
	fa.commit(ctx, rows, opts...)
}

// Clear empties the array.
func (fa *FieldArray) Clear(ctx context.Context) {
	fa.commit(ctx, []row{})
}
