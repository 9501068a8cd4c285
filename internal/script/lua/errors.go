package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when a theme function source does not
	// evaluate to a Lua function.
	ErrNotFunction = errors.New("lua source is not a function")
)
