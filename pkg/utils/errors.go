package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind names a class of failure the view model can report.
type ErrorKind string

const (
	// KindInvalidLayout: malformed Pp construction (negative width or indent).
	KindInvalidLayout ErrorKind = "InvalidLayout"
	// KindUnknownMethod: envelope with an unrecognized method.
	KindUnknownMethod ErrorKind = "UnknownMethod"
	// KindInconsistentObligations: remaining count does not match unsolved obligations.
	KindInconsistentObligations ErrorKind = "InconsistentObligations"
	// KindStaleRequest: the payload targets a superseded document version or request.
	KindStaleRequest ErrorKind = "StaleRequest"
	// KindInvalidGoalConfig: a goal configuration that breaks its structural invariants.
	KindInvalidGoalConfig ErrorKind = "InvalidGoalConfig"
	// KindInvalidTelemetry: negative perf measurements.
	KindInvalidTelemetry ErrorKind = "InvalidTelemetry"
	// KindStatusFinal: completion update for a version that already finished.
	KindStatusFinal ErrorKind = "StatusFinal"
	// KindInvalidRequest: a request parameter outside its allowed values.
	KindInvalidRequest ErrorKind = "InvalidRequest"
)

// Sentinels for errors.Is. A *StructuredError matches the sentinel of its kind.
var (
	ErrInvalidLayout           = &StructuredError{Code: KindInvalidLayout, Message: "invalid layout"}
	ErrUnknownMethod           = &StructuredError{Code: KindUnknownMethod, Message: "unknown method"}
	ErrInconsistentObligations = &StructuredError{Code: KindInconsistentObligations, Message: "inconsistent obligations"}
	ErrStaleRequest            = &StructuredError{Code: KindStaleRequest, Message: "stale request"}
	ErrInvalidGoalConfig       = &StructuredError{Code: KindInvalidGoalConfig, Message: "invalid goal configuration"}
	ErrInvalidTelemetry        = &StructuredError{Code: KindInvalidTelemetry, Message: "invalid telemetry"}
	ErrStatusFinal             = &StructuredError{Code: KindStatusFinal, Message: "completion status already final"}
	ErrInvalidRequest          = &StructuredError{Code: KindInvalidRequest, Message: "invalid request"}
)

// ErrorContext provides additional context for errors
type ErrorContext struct {
	Component string
	Operation string
	Resource  string
	Metadata  map[string]interface{}
}

// StructuredError represents a standardized error with rich context
type StructuredError struct {
	Code      ErrorKind
	Message   string
	Context   *ErrorContext
	RootCause error
}

// Error implements the error interface
func (e *StructuredError) Error() string {
	if e.RootCause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.RootCause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for compatibility with errors.Is and errors.As
func (e *StructuredError) Unwrap() error {
	return e.RootCause
}

// Is reports kind equality so callers can match against the package sentinels.
func (e *StructuredError) Is(target error) bool {
	t, ok := target.(*StructuredError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewStructuredError creates a new structured error
func NewStructuredError(code ErrorKind, message string, rootCause error) *StructuredError {
	return &StructuredError{
		Code:      code,
		Message:   message,
		RootCause: rootCause,
	}
}

// NewLayoutError reports a malformed Pp node.
func NewLayoutError(format string, args ...interface{}) *StructuredError {
	return NewStructuredError(KindInvalidLayout, fmt.Sprintf(format, args...), nil)
}

// NewUnknownMethodError reports an envelope whose method is not part of the channel.
func NewUnknownMethodError(channel, method string) *StructuredError {
	return NewStructuredError(
		KindUnknownMethod,
		fmt.Sprintf("unknown %s method %q", channel, method),
		nil,
	).WithOperation("decode").WithResource(channel)
}

// NewObligationsError reports an obligations view whose counters disagree.
func NewObligationsError(program string, remaining, unsolved int) *StructuredError {
	return NewStructuredError(
		KindInconsistentObligations,
		fmt.Sprintf("remaining=%d but %d obligations unsolved", remaining, unsolved),
		nil,
	).WithResource(program)
}

// NewStaleError reports a payload that targets a superseded document state.
func NewStaleError(uri string, version, latest int) *StructuredError {
	return NewStructuredError(
		KindStaleRequest,
		fmt.Sprintf("version %d superseded by %d", version, latest),
		nil,
	).WithResource(uri)
}

// NewValidationError creates a validation error of the given kind
func NewValidationError(kind ErrorKind, field, reason string) *StructuredError {
	return NewStructuredError(
		kind,
		fmt.Sprintf("validation failed for %s: %s", field, reason),
		nil,
	).WithResource(field)
}

// WithContext adds context to the error
func (e *StructuredError) WithContext(ctx *ErrorContext) *StructuredError {
	e.Context = ctx
	return e
}

// WithComponent adds component context
func (e *StructuredError) WithComponent(component string) *StructuredError {
	if e.Context == nil {
		e.Context = &ErrorContext{}
	}
	e.Context.Component = component
	return e
}

// WithOperation adds operation context
func (e *StructuredError) WithOperation(operation string) *StructuredError {
	if e.Context == nil {
		e.Context = &ErrorContext{}
	}
	e.Context.Operation = operation
	return e
}

// WithResource adds resource context
func (e *StructuredError) WithResource(resource string) *StructuredError {
	if e.Context == nil {
		e.Context = &ErrorContext{}
	}
	e.Context.Resource = resource
	return e
}

// WithMetadata adds metadata to the error
func (e *StructuredError) WithMetadata(key string, value interface{}) *StructuredError {
	if e.Context == nil {
		e.Context = &ErrorContext{}
	}
	if e.Context.Metadata == nil {
		e.Context.Metadata = make(map[string]interface{})
	}
	e.Context.Metadata[key] = value
	return e
}

// KindOf returns the kind of the first StructuredError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// FormatError formats an error for display
func FormatError(err error) string {
	var structuredErr *StructuredError
	if !errors.As(err, &structuredErr) {
		return err.Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Error [%s]: %s", structuredErr.Code, structuredErr.Message))

	if structuredErr.Context != nil {
		if structuredErr.Context.Component != "" {
			parts = append(parts, fmt.Sprintf("Component: %s", structuredErr.Context.Component))
		}
		if structuredErr.Context.Operation != "" {
			parts = append(parts, fmt.Sprintf("Operation: %s", structuredErr.Context.Operation))
		}
		if structuredErr.Context.Resource != "" {
			parts = append(parts, fmt.Sprintf("Resource: %s", structuredErr.Context.Resource))
		}
	}

	if structuredErr.RootCause != nil {
		parts = append(parts, fmt.Sprintf("Root Cause: %v", structuredErr.RootCause))
	}

	return strings.Join(parts, " | ")
}
