package config

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError describes one invalid configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (fe FieldError) String() string {
	return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
}

// ConfigurationError is returned when the configuration cannot be used.
// It is always detected before any side effect of a run.
type ConfigurationError struct {
	Fields []FieldError
}

func (e *ConfigurationError) Error() string {
	if len(e.Fields) == 1 {
		return "invalid configuration: " + e.Fields[0].String()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.String())
	}
	return fmt.Sprintf("invalid configuration (%d errors):\n  %s", len(e.Fields), strings.Join(msgs, "\n  "))
}

// Has reports whether the error mentions field.
func (e *ConfigurationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
