package validation

import (
	"errors"
	"fmt"
)

// ConfigurationError signals a caller bug or malformed parameter: an
// unrecognised well kind, a negative radius, an out-of-range angle or
// percent. It aborts the computation it occurs in and is never retried.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// NewConfigurationError builds a *ConfigurationError.
func NewConfigurationError(field string, value any, reason string) error {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
