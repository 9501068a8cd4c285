package script

import (
	"errors"
	"fmt"
)

// Errors returned by the script package.
var (
	// ErrUnknownDialect indicates an unsupported function-edit language.
	ErrUnknownDialect = errors.New("unknown script dialect")

	// ErrHydrationFailed matches every *HydrationError.
	ErrHydrationFailed = errors.New("hydration failed")

	// ErrInvalidResult indicates a function returned something that is not
	// configuration data (a function, a host object, ...).
	ErrInvalidResult = errors.New("function returned a non-data value")
)

// HydrationError reports the function edit that failed in strict mode.
type HydrationError struct {
	// Path is the edited path whose function failed.
	Path string
	// Err is the parse or evaluation error.
	Err error
}

// Error implements the error interface.
func (e *HydrationError) Error() string {
	return fmt.Sprintf("hydrate %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *HydrationError) Unwrap() error {
	return e.Err
}

// Is implements error matching for HydrationError.
func (e *HydrationError) Is(target error) bool {
	return target == ErrHydrationFailed
}
