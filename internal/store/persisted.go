package store

import (
	"slices"

	"github.com/dshills/themeforge/internal/catalog"
	"github.com/dshills/themeforge/internal/modification"
)

// Toggle records whether a composable is enabled. The position of a toggle
// in Persisted.Composables is the order it was last enabled in.
type Toggle struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// Persisted is the history-tracked, storable slice of editor state.
// It never includes the raw buffer.
type Persisted struct {
	BaseTheme       catalog.Ref      `json:"baseThemeReference"`
	Composables     []Toggle         `json:"composableEnablement"`
	Resolved        modification.Set `json:"resolvedModificationSet"`
	SelectedPreview string           `json:"selectedPreview,omitempty"`
	ColorScheme     string           `json:"colorScheme,omitempty"`
}

// NewPersisted returns an empty design on top of base.
func NewPersisted(base catalog.Ref) Persisted {
	return Persisted{
		BaseTheme: base,
		Resolved:  modification.NewSet(),
	}
}

// Clone returns a deep copy.
func (p Persisted) Clone() Persisted {
	out := p
	out.Composables = slices.Clone(p.Composables)
	out.Resolved = p.Resolved.Clone()
	return out
}

// Equal reports whether two snapshots describe the same state.
func (p Persisted) Equal(other Persisted) bool {
	return p.BaseTheme == other.BaseTheme &&
		slices.Equal(p.Composables, other.Composables) &&
		p.Resolved.Equal(other.Resolved) &&
		p.SelectedPreview == other.SelectedPreview &&
		p.ColorScheme == other.ColorScheme
}

// EnabledComposables returns the enabled ids in enable order.
func (p Persisted) EnabledComposables() []string {
	ids := make([]string, 0, len(p.Composables))
	for _, t := range p.Composables {
		if t.Enabled {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// IsEnabled reports whether composable id is enabled.
func (p Persisted) IsEnabled(id string) bool {
	i := slices.IndexFunc(p.Composables, func(t Toggle) bool { return t.ID == id })
	return i >= 0 && p.Composables[i].Enabled
}

// withToggle returns the toggles with id set to enabled. Enabling moves the
// id to the end so enable order is preserved; disabling keeps its slot.
func withToggle(toggles []Toggle, id string, enabled bool) []Toggle {
	out := slices.Clone(toggles)
	i := slices.IndexFunc(out, func(t Toggle) bool { return t.ID == id })

	switch {
	case i < 0:
		return append(out, Toggle{ID: id, Enabled: enabled})
	case !enabled:
		out[i].Enabled = false
		return out
	case out[i].Enabled:
		return out
	default:
		out = slices.Delete(out, i, i+1)
		return append(out, Toggle{ID: id, Enabled: true})
	}
}
