package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseVaultDate parses the vault's "YYYY-MM-DD, H:MM" timestamp format.
// Single- and double-digit hours and minutes are both valid. An existing
// time.Time passes through; anything else reports ok=false.
func ParseVaultDate(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}

	datePart, timePart, found := strings.Cut(s, ", ")
	if !found {
		return time.Time{}, false
	}
	hours, minutes, found := strings.Cut(timePart, ":")
	if !found {
		return time.Time{}, false
	}
	if len(hours) == 1 {
		hours = "0" + hours
	}
	if len(minutes) == 1 {
		minutes = "0" + minutes
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", fmt.Sprintf("%s %s:%s", datePart, hours, minutes), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeRelationItems flattens a raw relation list. The upstream
// authoring tool sometimes nests entries in single-element sub-arrays, so
// each item is unwrapped to the first scalar found; items that never reach
// a string are dropped.
func NormalizeRelationItems(items []any) []string {
	var result []string
	for _, item := range items {
		for {
			nested, ok := item.([]any)
			if !ok {
				break
			}
			if len(nested) == 0 {
				item = nil
				break
			}
			item = nested[0]
		}
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// CleanFrontmatter recursively prunes nil values, empty strings, empty
// arrays, and empty maps. Dates survive unconditionally. Cleaning is
// idempotent: cleaning already-clean input returns it unchanged.
func CleanFrontmatter(fm map[string]any) map[string]any {
	cleaned, ok := cleanValue(fm)
	if !ok {
		return nil
	}
	return cleaned.(map[string]any)
}

// cleanValue returns the cleaned value and whether anything remains.
func cleanValue(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case time.Time:
		return val, true
	case string:
		return val, val != ""
	case []string:
		cleaned := make([]string, 0, len(val))
		for _, item := range val {
			if item != "" {
				cleaned = append(cleaned, item)
			}
		}
		if len(cleaned) == 0 {
			return nil, false
		}
		return cleaned, true
	case []any:
		cleaned := make([]any, 0, len(val))
		for _, item := range val {
			if c, ok := cleanValue(item); ok {
				cleaned = append(cleaned, c)
			}
		}
		if len(cleaned) == 0 {
			return nil, false
		}
		return cleaned, true
	case map[string]any:
		cleaned := make(map[string]any, len(val))
		for key, item := range val {
			if c, ok := cleanValue(item); ok {
				cleaned[key] = c
			}
		}
		if len(cleaned) == 0 {
			return nil, false
		}
		return cleaned, true
	default:
		// Numbers, bools, and anything else pass through.
		return val, true
	}
}

// coerceNumber converts numeric-looking values to numbers. Integers are
// preferred over floats for string input.
func coerceNumber(v any) (any, bool) {
	switch val := v.(type) {
	case int, int64, float64:
		return val, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f, true
		}
		return val, false
	default:
		return val, false
	}
}
