package layer

import (
	"sort"
	"strings"
)

// Separator joins the segments of a path.
const Separator = "."

// Flatten walks a tree and returns one entry per leaf keyed by its
// dot-separated path. Arrays and any other non-map values are leaves.
// Empty maps produce no entry.
func Flatten(data map[string]any) map[string]any {
	result := make(map[string]any)
	flattenRecursive(data, "", result)
	return result
}

func flattenRecursive(data map[string]any, prefix string, result map[string]any) {
	for key, val := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + Separator + key
		}

		if nested, ok := val.(map[string]any); ok {
			flattenRecursive(nested, fullKey, result)
		} else {
			result[fullKey] = cloneValue(val)
		}
	}
}

// Expand converts a flat path map back into a nested tree.
// Paths are applied in sorted order, so a path always lands after its
// prefixes: "a.b" = 1 followed by "a.b.c" = 2 yields {a:{b:{c:2}}}.
func Expand(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for _, path := range SortedPaths(flat) {
		SetByPath(result, path, cloneValue(flat[path]))
	}
	return result
}

// SortedPaths returns the keys of a flat map in ascending order.
func SortedPaths[V any](flat map[string]V) []string {
	paths := make([]string, 0, len(flat))
	for path := range flat {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Join builds a path from segments, skipping empty ones.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, Separator)
}

// Root returns the first segment of a path.
func Root(path string) string {
	root, _, _ := strings.Cut(path, Separator)
	return root
}

// HasPrefix reports whether path equals prefix or lies beneath it.
func HasPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+Separator)
}

// GetByPath retrieves a value from a nested map using a dot-separated path.
func GetByPath(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}

	parts := strings.Split(path, Separator)
	current := any(data)

	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		val, exists := m[part]
		if !exists {
			return nil, false
		}

		current = val
	}

	return current, true
}

// SetByPath sets a value in a nested map using a dot-separated path.
// Creates intermediate maps as needed, replacing any non-map value found on
// the way.
func SetByPath(data map[string]any, path string, value any) {
	if data == nil {
		return
	}

	parts := strings.Split(path, Separator)
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	current[parts[len(parts)-1]] = value
}

// DeleteByPath removes a value from a nested map using a dot-separated path.
// Returns true if the value was found and deleted.
func DeleteByPath(data map[string]any, path string) bool {
	if data == nil {
		return false
	}

	parts := strings.Split(path, Separator)
	current := data

	for i := 0; i < len(parts)-1; i++ {
		next, ok := current[parts[i]].(map[string]any)
		if !ok {
			return false
		}
		current = next
	}

	key := parts[len(parts)-1]
	if _, exists := current[key]; exists {
		delete(current, key)
		return true
	}

	return false
}
