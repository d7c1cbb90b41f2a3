package fieldpath

import "reflect"

// Get walks p from root. It reports false as soon as an intermediate is nil,
// missing, or not a container; it never fails.
func Get(root any, p Path) (any, bool) {
	cur := root
	for _, seg := range p {
		if cur == nil {
			return nil, false
		}
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func child(container any, seg Segment) (any, bool) {
	switch c := container.(type) {
	case map[string]any:
		v, ok := c[seg.Key()]
		return v, ok
	case []any:
		if !seg.IsIndex() || seg.Index() >= len(c) {
			return nil, false
		}
		return c[seg.Index()], true
	}
	// typed containers supplied by callers ([]string, map[string]int, ...)
	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if !seg.IsIndex() || seg.Index() >= rv.Len() {
			return nil, false
		}
		return rv.Index(seg.Index()).Interface(), true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(seg.Key()).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	}
	return nil, false
}

// MaxGrow bounds how many nil holes Set pads a slice with before writing
// past its end.
const MaxGrow = 1024

// Set writes v at p inside root, creating missing intermediates: a []any
// when the following segment is an index, a map otherwise. Maps are mutated
// in place; slices that must grow are reassigned into their parent. Set
// reports false and leaves root untouched when an intermediate is a scalar,
// an index lies more than MaxGrow past the end of its slice, or p is empty.
func Set(root map[string]any, p Path, v any) bool {
	if len(p) == 0 || root == nil {
		return false
	}
	_, ok := setIn(root, p, v)
	return ok
}

func setIn(container any, p Path, v any) (any, bool) {
	seg := p[0]
	last := len(p) == 1
	switch c := container.(type) {
	case map[string]any:
		if last {
			c[seg.Key()] = v
			return c, true
		}
		next, ok := setIn(ensureContainer(c[seg.Key()], p[1]), p[1:], v)
		if !ok {
			return c, false
		}
		c[seg.Key()] = next
		return c, true
	case []any:
		if !seg.IsIndex() {
			return c, false
		}
		i := seg.Index()
		if i > len(c)+MaxGrow {
			return c, false
		}
		for len(c) <= i {
			c = append(c, nil)
		}
		if last {
			c[i] = v
			return c, true
		}
		next, ok := setIn(ensureContainer(c[i], p[1]), p[1:], v)
		if !ok {
			return c, false
		}
		c[i] = next
		return c, true
	}
	return container, false
}

// ensureContainer returns cur when it is already set, or a fresh container
// shaped for the next segment.
func ensureContainer(cur any, next Segment) any {
	if cur != nil {
		return cur
	}
	if next.IsIndex() {
		return []any{}
	}
	return map[string]any{}
}

// Unset removes the value at p. A slice parent has the index spliced out,
// shifting later elements down; a map parent loses the key. Unresolved
// paths are a no-op.
func Unset(root map[string]any, p Path) {
	if len(p) == 0 || root == nil {
		return
	}
	unsetIn(root, p)
}

func unsetIn(container any, p Path) (any, bool) {
	seg := p[0]
	if len(p) == 1 {
		switch c := container.(type) {
		case map[string]any:
			delete(c, seg.Key())
			return c, true
		case []any:
			if !seg.IsIndex() || seg.Index() >= len(c) {
				return c, false
			}
			i := seg.Index()
			return append(c[:i:i], c[i+1:]...), true
		}
		return container, false
	}
	switch c := container.(type) {
	case map[string]any:
		cur, ok := c[seg.Key()]
		if !ok || cur == nil {
			return c, false
		}
		next, changed := unsetIn(cur, p[1:])
		if changed {
			c[seg.Key()] = next
		}
		return c, changed
	case []any:
		if !seg.IsIndex() || seg.Index() >= len(c) || c[seg.Index()] == nil {
			return c, false
		}
		next, changed := unsetIn(c[seg.Index()], p[1:])
		if changed {
			c[seg.Index()] = next
		}
		return c, changed
	}
	return container, false
}
