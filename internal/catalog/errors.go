package catalog

import (
	"errors"
	"fmt"
)

// Errors returned by the catalog.
var (
	// ErrUnknownTemplate indicates a base reference no template matches.
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrUnknownColorScheme indicates a template lacks the requested scheme.
	ErrUnknownColorScheme = errors.New("unknown color scheme")

	// ErrUnknownComposable indicates an enabled id no composable matches.
	ErrUnknownComposable = errors.New("unknown composable")

	// ErrInvalidComposable indicates a dynamic composable produced
	// something other than a configuration tree.
	ErrInvalidComposable = errors.New("invalid composable output")
)

// NotFoundError reports which lookup failed.
type NotFoundError struct {
	// Kind is one of ErrUnknownTemplate, ErrUnknownColorScheme or
	// ErrUnknownComposable.
	Kind error
	// ID is the missing identifier.
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.ID)
}

// Unwrap returns the sentinel kind.
func (e *NotFoundError) Unwrap() error {
	return e.Kind
}
