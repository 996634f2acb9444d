package model

import (
	"fmt"
	"strconv"
	"strings"
)

// NotFound is the sentinel the extraction layer records when a fact could
// not be located on the site. Comparisons against it are case-insensitive.
const NotFound = "Not found"

// FactStore holds the facts extracted from a crawled site, keyed by
// extraction key. Values may be strings, booleans, numbers, lists or
// nested maps.
type FactStore map[string]any

// Lookup resolves an extraction key. Keys containing dots descend into
// nested maps one segment at a time. The second return is false when the
// path is absent.
func (fs FactStore) Lookup(key string) (any, bool) {
	if fs == nil {
		return nil, false
	}
	if v, ok := fs[key]; ok {
		return v, true
	}
	parts := strings.Split(key, ".")
	if len(parts) < 2 {
		return nil, false
	}
	var current any = map[string]any(fs)
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// StringValue resolves a key and renders it as display text. Absent keys
// render as the NotFound sentinel.
func (fs FactStore) StringValue(key string) string {
	v, ok := fs.Lookup(key)
	if !ok {
		return NotFound
	}
	return FormatValue(v)
}

// SetDefault stores a value only when the key is absent or currently
// recorded as NotFound.
func (fs FactStore) SetDefault(key string, value any) {
	if existing, ok := fs.Lookup(key); ok {
		if s, isStr := existing.(string); !isStr || !strings.EqualFold(strings.TrimSpace(s), NotFound) {
			return
		}
	}
	fs[key] = value
}

// FormatValue renders a single fact value as display text. Booleans render
// as "true"/"false", lists join with ", ", nil renders as NotFound.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return NotFound
	case string:
		return strings.TrimSpace(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Normalize lowercases and trims a value for equality comparisons.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsMissing reports whether a display value is empty or the NotFound
// sentinel.
func IsMissing(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, NotFound)
}
