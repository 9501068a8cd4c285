// Package layer merges configuration trees.
//
// A tree is a map[string]any whose values are primitives, []any or nested
// maps. Trees are combined as an ordered stack of layers: higher priority
// layers override lower priority layers at the leaf level. The package also
// converts trees to and from flat dot-path maps.
package layer

// Layer represents a single configuration layer.
type Layer struct {
	// Name identifies the layer (e.g., "template", "composable:rounded").
	Name string

	// Priority determines merge order (higher overrides lower).
	Priority int

	// Source indicates what kind of data the layer carries.
	Source Source

	// Data holds the configuration values as a nested map.
	Data map[string]any
}

// NewLayer creates a new configuration layer.
func NewLayer(name string, source Source, priority int) *Layer {
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: priority,
		Data:     make(map[string]any),
	}
}

// NewLayerWithData creates a new layer with initial data.
func NewLayerWithData(name string, source Source, priority int, data map[string]any) *Layer {
	if data == nil {
		data = make(map[string]any)
	}
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: priority,
		Data:     data,
	}
}

// Clone creates a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	return &Layer{
		Name:     l.Name,
		Priority: l.Priority,
		Source:   l.Source,
		Data:     cloneMap(l.Data),
	}
}

// Source indicates where a configuration layer came from.
type Source uint8

const (
	// SourceDefaults represents built-in default values.
	SourceDefaults Source = iota
	// SourceTemplate represents the base theme template.
	SourceTemplate
	// SourceComposable represents an enabled composable.
	SourceComposable
	// SourceLiteral represents committed literal edits.
	SourceLiteral
	// SourceFunction represents committed, hydrated function edits.
	SourceFunction
	// SourceRawLiteral represents uncommitted literal edits.
	SourceRawLiteral
	// SourceRawFunction represents uncommitted, hydrated function edits.
	SourceRawFunction
	// SourceFile represents a settings file.
	SourceFile
	// SourceEnv represents environment variables.
	SourceEnv
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceDefaults:
		return "defaults"
	case SourceTemplate:
		return "template"
	case SourceComposable:
		return "composable"
	case SourceLiteral:
		return "literal"
	case SourceFunction:
		return "function"
	case SourceRawLiteral:
		return "raw-literal"
	case SourceRawFunction:
		return "raw-function"
	case SourceFile:
		return "file"
	case SourceEnv:
		return "environment"
	default:
		return "unknown"
	}
}
