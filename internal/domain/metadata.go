package domain

import (
	"math"
	"strconv"
	"strings"
)

// Metadata is the schemaless per-item metadata attached to a memory hit.
// Its shape varies by space type, so access goes through tolerant typed
// accessors instead of a fixed schema.
type Metadata map[string]any

// String returns the value under key rendered as a string. Whole numbers
// are rendered without a fractional part (upstream stores numeric ids).
// Returns "" when the key is absent or null.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if math.Trunc(t) == t && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Int returns the value under key coerced to int, or 0.
func (m Metadata) Int(key string) int {
	v, ok := m[key]
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// StringList returns the value under key as a string slice. A scalar value
// is promoted to a one-element list.
func (m Metadata) StringList(key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		if s := m.String(key); s != "" {
			return []string{s}
		}
		return nil
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := scalarString(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// IntList returns the value under key as an int slice. A scalar value is
// promoted to a one-element list; entries that do not parse are dropped.
func (m Metadata) IntList(key string) []int {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		if n := m.Int(key); n != 0 {
			return []int{n}
		}
		return nil
	}
	result := make([]int, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case float64:
			result = append(result, int(t))
		case int:
			result = append(result, t)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
				result = append(result, n)
			}
		}
	}
	return result
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if math.Trunc(t) == t && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
