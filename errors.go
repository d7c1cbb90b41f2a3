package goform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/goform/fieldpath"
)

// Issue codes produced by the dsl schemas (exported consts for IDE completion).
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeInvalidFormat = "invalid_format"
	CodeInvalidValue  = "invalid_value"
	CodeParseError    = "parse_error"
	CodeCustom        = "custom"
)

// Issue is a single schema finding attached to a path of the value tree.
type Issue struct {
	Path    fieldpath.Path
	Code    string
	Message string
	// Params carries structured parameters (e.g., {"min":1}) for i18n.
	Params map[string]any
}

// Name returns the dotted field name the issue is attached to.
func (it Issue) Name() string { return it.Path.String() }

// Issues is a collection of schema findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. too_short at /personalInfo/firstName
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// First returns the message of the first issue whose path equals p.
func (iss Issues) First(p fieldpath.Path) (string, bool) {
	for _, it := range iss {
		if it.Path.Equal(p) {
			return it.Message, true
		}
	}
	return "", false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// IssueAt creates an Issue at the given path.
func IssueAt(p fieldpath.Path, code, msg string, params map[string]any) Issue {
	return Issue{Path: append(fieldpath.Path{}, p...), Code: code, Message: msg, Params: params}
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
