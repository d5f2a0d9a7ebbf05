package entity

import "strings"

// Properties holds all type-specific entity state as a nested JSON document.
//
// Values are the JSON scalar types (string, float64, bool, nil) plus
// map[string]any and []any for nesting. Fields are addressed by dotted
// paths:
//
//	props.Get("hardware.sensors", nil)
//	props.Set("config.readingInterval", 60.0)
type Properties map[string]any

// pathSeparator splits dotted property paths into segments.
const pathSeparator = "."

// Get resolves a dotted path in the document.
//
// Absent paths are not errors: if any segment is missing, or an intermediate
// value is not a nested document, Get returns def. This is the degrade-to-
// default contract every typed-view accessor is built on.
func (p Properties) Get(path string, def any) any {
	if p == nil || path == "" {
		return def
	}

	segments := strings.Split(path, pathSeparator)
	var current any = map[string]any(p)

	for _, seg := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return def
		}
		current, ok = node[seg]
		if !ok {
			return def
		}
	}

	return current
}

// Set writes a value at a dotted path, creating intermediate containers as
// needed. Sibling keys at every level are preserved.
//
// If an intermediate segment holds a non-document value (e.g. a scalar),
// it is replaced by a fresh container so the write can proceed.
func (p Properties) Set(path string, value any) {
	if p == nil || path == "" {
		return
	}

	segments := strings.Split(path, pathSeparator)
	node := map[string]any(p)

	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}

	node[segments[len(segments)-1]] = value
}

// Has reports whether a dotted path resolves to a value in the document.
func (p Properties) Has(path string) bool {
	marker := &struct{}{}
	return p.Get(path, marker) != any(marker)
}

// Delete removes the value at a dotted path. Missing paths are a no-op.
// Intermediate containers are left in place even when emptied.
func (p Properties) Delete(path string) {
	if p == nil || path == "" {
		return
	}

	segments := strings.Split(path, pathSeparator)
	node := map[string]any(p)

	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			return
		}
		node = child
	}

	delete(node, segments[len(segments)-1])
}

// DeepCopy creates a deep copy of the property document.
// Nested documents and lists are recursively copied.
func (p Properties) DeepCopy() Properties {
	if p == nil {
		return nil
	}
	return Properties(deepCopyMap(p))
}

// deepCopyMap creates a deep copy of a map[string]any.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case Properties:
		return deepCopyMap(val)
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, float64, nil, etc.) are safe to copy by value
		return v
	}
}
