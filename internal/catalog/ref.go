package catalog

import (
	"fmt"
	"strings"
)

// RefType tells where a base template comes from.
type RefType string

const (
	// RefStatic names a built-in template.
	RefStatic RefType = "static"
	// RefImported names a template loaded from a file or imported at runtime.
	RefImported RefType = "imported"
)

// Ref identifies a base template.
type Ref struct {
	Type RefType `json:"type"`
	Ref  string  `json:"ref"`
}

// DefaultRef is the built-in Material template.
func DefaultRef() Ref {
	return Ref{Type: RefStatic, Ref: DefaultTemplateID}
}

// String formats the reference as "type:ref".
func (r Ref) String() string {
	return string(r.Type) + ":" + r.Ref
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool {
	return r.Type == "" && r.Ref == ""
}

// ParseRef parses "static:default", "imported:brand" or a bare id, which
// means a static template.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("empty template reference")
	}

	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return Ref{Type: RefStatic, Ref: s}, nil
	}
	switch RefType(kind) {
	case RefStatic, RefImported:
	default:
		return Ref{}, fmt.Errorf("unknown template reference type %q", kind)
	}
	if id == "" {
		return Ref{}, fmt.Errorf("empty template id in %q", s)
	}
	return Ref{Type: RefType(kind), Ref: id}, nil
}
