package goform

// EventName identifies a form lifecycle event.
type EventName string

const (
	// EventValuesChange fires after every committed write to the value tree.
	EventValuesChange EventName = "values:change"
	// EventReset fires when the form is reset, before the matching values:change.
	EventReset EventName = "reset"
)

// Event is delivered to listeners. Field is the canonical name of the written
// field, or empty for whole-tree changes.
type Event struct {
	Name  EventName
	Field string
}

// Listener receives form events synchronously on the emitting goroutine.
type Listener func(Event)

type listenerEntry struct {
	id uint64
	fn Listener
}

// Subscribe registers l for events named name and returns a function that
// removes it. Listeners run in subscription order.
func (f *Form) Subscribe(name EventName, l Listener) (unsubscribe func()) {
	f.lmu.Lock()
	f.nextListener++
	id := f.nextListener
	f.listeners[name] = append(f.listeners[name], listenerEntry{id: id, fn: l})
	f.lmu.Unlock()

	return func() {
		f.lmu.Lock()
		defer f.lmu.Unlock()
		entries := f.listeners[name]
		for i, e := range entries {
			if e.id == id {
				f.listeners[name] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

func (f *Form) emit(ev Event) {
	f.lmu.Lock()
	entries := append([]listenerEntry(nil), f.listeners[ev.Name]...)
	f.lmu.Unlock()
	for _, e := range entries {
		e.fn(ev)
	}
}
