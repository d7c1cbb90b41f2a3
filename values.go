package goform

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// ValuesAs decodes a snapshot of the form's values into T.
func ValuesAs[T any](f *Form) (T, error) {
	var out T
	b, err := json.Marshal(f.GetValues())
	if err != nil {
		return out, fmt.Errorf("goform: encode values: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("goform: decode values: %w", err)
	}
	return out, nil
}
