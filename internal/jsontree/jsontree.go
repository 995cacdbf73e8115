// Package jsontree navigates decoded JSON objects by key path.
package jsontree

// Get walks nested objects along path and returns the value at the end.
func Get(obj map[string]any, path ...string) (any, bool) {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the string at path, or ("", false) when absent or not a
// string.
func String(obj map[string]any, path ...string) (string, bool) {
	v, ok := Get(obj, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the integer at path. JSON numbers decode as float64; values
// with a fractional part are rejected.
func Int(obj map[string]any, path ...string) (int, bool) {
	v, ok := Get(obj, path...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// Bool returns the boolean at path.
func Bool(obj map[string]any, path ...string) (bool, bool) {
	v, ok := Get(obj, path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Map returns the object at path.
func Map(obj map[string]any, path ...string) (map[string]any, bool) {
	v, ok := Get(obj, path...)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// Slice returns the array at path.
func Slice(obj map[string]any, path ...string) ([]any, bool) {
	v, ok := Get(obj, path...)
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}
