package api

import (
	"fmt"
)

// ConfigurationError reports an invalid combination of settings, such as a
// tier position out of range or an instance present in two tiers.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// Configurationf builds a ConfigurationError from a format string.
func Configurationf(format string, a ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, a...)}
}

// ValidationError reports a field that violates a constraint that cannot be
// fixed by trimming.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Msg
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Msg)
}

// Validationf builds a ValidationError for field.
func Validationf(field, format string, a ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, a...)}
}

// TransportError is returned when a request fails at the network level or the
// API answers with a status code >= 400. StatusCode is 500 for network
// failures, matching the envelope's convention.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: error code %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StreamAbortError is delivered to the reader of a PageStream when the
// background page loop stops before the last page.
type StreamAbortError struct {
	Op   string
	Page int
	Err  error
}

func (e *StreamAbortError) Error() string {
	return fmt.Sprintf("%s: stream aborted at page %d: %v", e.Op, e.Page, e.Err)
}

func (e *StreamAbortError) Unwrap() error {
	return e.Err
}
