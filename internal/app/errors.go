package app

import (
	"errors"
	"fmt"
)

// Editor errors.
var (
	// ErrFunctionControlled indicates a literal write to a path whose value
	// is produced by a function edit.
	ErrFunctionControlled = errors.New("path is controlled by a function")

	// ErrUnsavedChanges indicates the raw buffer holds uncommitted edits.
	ErrUnsavedChanges = errors.New("uncommitted changes")

	// ErrNoDesign indicates a save of an unsaved design without a name.
	ErrNoDesign = errors.New("design has no name")

	// ErrComponentNotAvailable indicates a required component is not
	// configured.
	ErrComponentNotAvailable = errors.New("component not available")

	// ErrInvalidPath indicates an empty, malformed or reserved edit path.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidValue indicates an edit value that is neither function
	// source nor JSON-compatible data.
	ErrInvalidValue = errors.New("invalid value")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "save", "open", "commit")
	Target string // Target of the operation (e.g., design name, path)
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
