package modification

import (
	"slices"
	"strings"

	"github.com/dshills/themeforge/internal/config/layer"
)

// SchemesKey is the root under which scheme-specific edits are stored. It
// is not a valid theme key, so theme paths such as colorSchemes.* stay
// editable as ordinary edits.
const SchemesKey = "$scheme"

// DefaultScopedRoots are the top-level keys duplicated per color scheme.
var DefaultScopedRoots = []string{"palette", "shadows"}

// Scoping decides which paths are color-scheme specific.
type Scoping struct {
	Roots []string
}

// DefaultScoping returns the scoping used when settings do not override it.
func DefaultScoping() Scoping {
	return Scoping{Roots: slices.Clone(DefaultScopedRoots)}
}

// IsColorSchemeScoped reports whether path belongs to the per-scheme part of
// the tree.
func (s Scoping) IsColorSchemeScoped(path string) bool {
	return slices.Contains(s.Roots, layer.Root(path))
}

// Qualify maps a tree path to the path an edit is stored under while scheme
// is selected. Global paths and an empty scheme are returned unchanged.
func (s Scoping) Qualify(scheme, path string) string {
	if scheme == "" || !s.IsColorSchemeScoped(path) {
		return path
	}
	return layer.Join(SchemesKey, scheme, path)
}

// SchemeOf splits a qualified path into its scheme and tree path.
// ok is false for unqualified paths.
func SchemeOf(path string) (scheme, rest string, ok bool) {
	after, found := strings.CutPrefix(path, SchemesKey+layer.Separator)
	if !found {
		return "", path, false
	}
	scheme, rest, found = strings.Cut(after, layer.Separator)
	if !found || scheme == "" || rest == "" {
		return "", path, false
	}
	return scheme, rest, true
}

// ForScheme projects a flat edit map onto one color scheme: unqualified
// paths apply as-is, paths qualified for scheme have their qualifier
// stripped and win over unqualified ones, and paths qualified for other
// schemes are dropped.
func ForScheme[V any](flat map[string]V, scheme string) map[string]V {
	out := make(map[string]V, len(flat))
	for path, v := range flat {
		if _, _, qualified := SchemeOf(path); !qualified {
			out[path] = v
		}
	}
	for path, v := range flat {
		if s, rest, qualified := SchemeOf(path); qualified && s == scheme {
			out[rest] = v
		}
	}
	return out
}

// ForScheme projects both buckets of the set onto a color scheme. A path
// whose scheme-specific edit is of the other kind is removed from the
// other bucket so the buckets stay disjoint.
func (s Set) ForScheme(scheme string) Set {
	out := Set{
		Literals:  ForScheme(s.Literals, scheme),
		Functions: ForScheme(s.Functions, scheme),
	}
	for path := range s.Literals {
		if sc, rest, ok := SchemeOf(path); ok && sc == scheme {
			delete(out.Functions, rest)
		}
	}
	for path := range s.Functions {
		if sc, rest, ok := SchemeOf(path); ok && sc == scheme {
			delete(out.Literals, rest)
		}
	}
	return out
}
