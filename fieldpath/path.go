// Package fieldpath parses dotted/bracketed field paths ("a.b[0].c") and
// reads or writes the addressed location inside a value tree made of
// map[string]any and []any containers.
package fieldpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Segment is one step of a Path: either a map key or a sequence index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a key segment.
func Key(k string) Segment { return Segment{key: k} }

// Index returns an index segment.
func Index(i int) Segment { return Segment{index: i, isIndex: true} }

// IsIndex reports whether the segment addresses a sequence position.
func (s Segment) IsIndex() bool { return s.isIndex }

// Index returns the sequence position (0 for key segments).
func (s Segment) Index() int { return s.index }

// Key returns the mapping key. Index segments render their decimal form so
// they can still address a map.
func (s Segment) Key() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

func (s Segment) String() string { return s.Key() }

// Path is an ordered sequence of segments.
type Path []Segment

var (
	bracketRe = regexp.MustCompile(`\[(\w+)\]`)
	digitsRe  = regexp.MustCompile(`^\d+$`)
)

// Parse converts a field path string into segments. Bracket syntax is
// normalized to dots; all-digit segments become indexes. An empty string
// yields an empty Path. Parse never fails; use Check to enforce the grammar.
func Parse(s string) Path {
	sanitized := strings.TrimPrefix(bracketRe.ReplaceAllString(s, ".$1"), ".")
	if sanitized == "" {
		return Path{}
	}
	parts := strings.Split(sanitized, ".")
	out := make(Path, 0, len(parts))
	for _, p := range parts {
		if digitsRe.MatchString(p) {
			if n, err := strconv.Atoi(p); err == nil {
				out = append(out, Index(n))
				continue
			}
		}
		out = append(out, Key(p))
	}
	return out
}

// Canonical returns the dotted form of s ("a[0].b" -> "a.0.b").
func Canonical(s string) string { return Parse(s).String() }

// ErrInvalidPath is wrapped by Check failures.
var ErrInvalidPath = errors.New("fieldpath: invalid path")

// Check validates s against the path grammar: non-empty dot-separated
// segments, each optionally followed by [word] index groups.
func Check(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if strings.Count(s, "[") != strings.Count(s, "]") {
		return fmt.Errorf("%w: unbalanced brackets in %q", ErrInvalidPath, s)
	}
	rest := bracketRe.ReplaceAllString(s, ".$1")
	if strings.ContainsAny(rest, "[]") {
		return fmt.Errorf("%w: malformed index in %q", ErrInvalidPath, s)
	}
	for _, p := range strings.Split(rest, ".") {
		if p == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, s)
		}
	}
	return nil
}

// String renders the dotted form ("a.b.0.c").
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.Key()
	}
	return strings.Join(parts, ".")
}

// Pointer renders an RFC 6901 JSON Pointer ("/a/b/0/c"); the root is "/".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		// escape '~' -> '~0', '/' -> '~1'
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.Key(), "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// Field returns a copy of p extended with a key segment.
func (p Path) Field(name string) Path {
	return append(append(Path{}, p...), Key(name))
}

// Index returns a copy of p extended with an index segment.
func (p Path) Index(i int) Path {
	return append(append(Path{}, p...), Index(i))
}

// Equal compares segment by segment; key and index segments never match
// each other.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}
