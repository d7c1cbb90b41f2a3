package dsl

import (
	"context"
	"strconv"

	"github.com/reoring/goform"
	"github.com/reoring/goform/fieldpath"
	"github.com/reoring/goform/i18n"
	js "github.com/reoring/goform/jsonschema"
)

// Node is a schema node. Every node is a goform.Schema on its own and can be
// nested in Object and Array.
type Node interface {
	goform.Schema
	JSONSchema() *js.Schema
	parseAt(ctx context.Context, v any, at fieldpath.Path) (any, goform.Issues)
	// onMissing tells an enclosing object what to do with an absent key:
	// substitute def (when hasDef), skip it, or report it as required.
	onMissing() (def any, hasDef, required bool)
}

// parseRoot runs n at the root path and folds issues into an error.
func parseRoot(ctx context.Context, n Node, v any) (any, error) {
	out, iss := n.parseAt(ctx, v, nil)
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// rule is a check attached to a primitive node.
type rule struct {
	code   string
	params map[string]any
	msg    string
}

// message returns the custom message, or the translated message for the
// rule's code.
func (r rule) message() string {
	if r.msg != "" {
		return r.msg
	}
	return i18n.T(r.code, stringParams(r.params))
}

func (r rule) issue(at fieldpath.Path) goform.Issue {
	return goform.IssueAt(at, r.code, r.message(), r.params)
}

func stringParams(p map[string]any) map[string]string {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		switch x := v.(type) {
		case int:
			out[k] = strconv.Itoa(x)
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case string:
			out[k] = x
		}
	}
	return out
}

func firstMsg(msg []string) string {
	if len(msg) > 0 {
		return msg[0]
	}
	return ""
}

func typeIssue(at fieldpath.Path, expected string) goform.Issue {
	return goform.IssueAt(at, goform.CodeInvalidType, i18n.T(goform.CodeInvalidType, nil), map[string]any{"expected": expected})
}
