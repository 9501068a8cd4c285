package layer

// Standard priority levels for configuration layers.
// Higher values override lower values during merging.
const (
	PriorityDefaults    = 0
	PriorityTemplate    = 100
	PriorityComposable  = 200
	PriorityLiteral     = 300
	PriorityFunction    = 400
	PriorityRawLiteral  = 500
	PriorityRawFunction = 600
	PriorityFile        = 700
	PriorityEnv         = 800
)

// DefaultPriority returns the default priority for a given source.
func DefaultPriority(source Source) int {
	switch source {
	case SourceDefaults:
		return PriorityDefaults
	case SourceTemplate:
		return PriorityTemplate
	case SourceComposable:
		return PriorityComposable
	case SourceLiteral:
		return PriorityLiteral
	case SourceFunction:
		return PriorityFunction
	case SourceRawLiteral:
		return PriorityRawLiteral
	case SourceRawFunction:
		return PriorityRawFunction
	case SourceFile:
		return PriorityFile
	case SourceEnv:
		return PriorityEnv
	default:
		return PriorityDefaults
	}
}
