// Package modification holds the classified, persistable form of user edits
// and the rules that split raw edits into literals and functions.
package modification

import (
	"maps"

	"github.com/dshills/themeforge/internal/config/layer"
)

// Code is a function-valued edit: source text evaluated against the
// resolved configuration. Raw buffers hold functions as Code values.
type Code string

// Set is the resolved modification set. A path appears in at most one of
// the two buckets.
type Set struct {
	Literals  map[string]any    `json:"literals"`
	Functions map[string]string `json:"functions"`
}

// NewSet returns an empty set with both buckets allocated.
func NewSet() Set {
	return Set{
		Literals:  make(map[string]any),
		Functions: make(map[string]string),
	}
}

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	out := NewSet()
	for path, v := range s.Literals {
		out.Literals[path] = cloneLeaf(v)
	}
	maps.Copy(out.Functions, s.Functions)
	return out
}

// Equal reports whether two sets hold the same edits.
func (s Set) Equal(other Set) bool {
	if len(s.Literals) != len(other.Literals) || len(s.Functions) != len(other.Functions) {
		return false
	}
	for path, v := range s.Literals {
		ov, ok := other.Literals[path]
		if !ok || !layer.Equal(v, ov) {
			return false
		}
	}
	return maps.Equal(s.Functions, other.Functions)
}

// Len returns the number of edited paths.
func (s Set) Len() int {
	return len(s.Literals) + len(s.Functions)
}

// IsEmpty reports whether the set holds no edits.
func (s Set) IsEmpty() bool {
	return s.Len() == 0
}

// Flat returns the set as a single raw edit map: literals as-is and
// functions as Code values. This is the raw buffer that mirrors the set.
func (s Set) Flat() map[string]any {
	out := make(map[string]any, s.Len())
	for path, v := range s.Literals {
		out[path] = cloneLeaf(v)
	}
	for path, src := range s.Functions {
		out[path] = Code(src)
	}
	return out
}

// IsFunction reports whether path is controlled by a function edit.
func (s Set) IsFunction(path string) bool {
	_, ok := s.Functions[path]
	return ok
}

// Lookup returns the edit at path and whether it is a function.
func (s Set) Lookup(path string) (value any, isFunction bool, ok bool) {
	if src, found := s.Functions[path]; found {
		return Code(src), true, true
	}
	if v, found := s.Literals[path]; found {
		return v, false, true
	}
	return nil, false, false
}

func cloneLeaf(v any) any {
	return layer.CloneValue(v)
}
