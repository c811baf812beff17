// Package notes parses raw note files into frontmatter and body.
package notes

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// Parse splits a note into its frontmatter mapping and body text. A note
// without a metadata block yields a nil map and the full content as body.
// Nested mapping keys are normalized to strings so the result is safe to
// walk and to re-serialize as JSON.
func Parse(data []byte) (map[string]any, string, error) {
	var fm map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return nil, "", err
	}
	for key, value := range fm {
		fm[key] = normalizeValue(value)
	}
	return fm, string(body), nil
}

// normalizeValue rewrites the interface-keyed maps the YAML decoder
// produces into string-keyed ones, recursively.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = normalizeValue(item)
		}
		return m
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeValue(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeValue(item)
		}
		return val
	default:
		return val
	}
}
