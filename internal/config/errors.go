package config

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by configuration operations.
var (
	// ErrValidationFailed indicates a setting fails validation.
	ErrValidationFailed = errors.New("validation failed")

	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")
)

// ValidationError describes validation failures for one or more settings.
type ValidationError struct {
	// Fields maps setting paths to what is wrong with them.
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, path := range sortedKeys(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s: %s", path, e.Fields[path]))
	}
	return "invalid settings: " + strings.Join(parts, "; ")
}

// Is implements error matching for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
