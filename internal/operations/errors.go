package operations

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeDependency   ErrorType = "dependency"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeFatal        ErrorType = "fatal"
	ErrorTypeNotFound     ErrorType = "not_found"
)

// OperationError represents an operation-specific error
type OperationError struct {
	Type    ErrorType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"cause,omitempty"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: "step cannot run",
		Cause:   cause,
	}
}

// NewDependencyError creates a new dependency error
func NewDependencyError(step, dependsOn string, status StepStatus) *OperationError {
	return &OperationError{
		Type:    ErrorTypeDependency,
		Step:    step,
		Message: fmt.Sprintf("dependency %s not completed (status: %s)", dependsOn, status),
	}
}

// NewExecutionError creates a new execution error
func NewExecutionError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(step string, timeout string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeTimeout,
		Step:    step,
		Message: fmt.Sprintf("step exceeded timeout of %s", timeout),
		Cause:   context.DeadlineExceeded,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "operation was cancelled",
		Cause:   context.Canceled,
	}
}

// NewFatalError creates a new fatal error
func NewFatalError(message string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeFatal,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFoundError reports an unknown step ID
func NewNotFoundError(step string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeNotFound,
		Step:    step,
		Message: "step not registered",
	}
}

// GetErrorType returns the type of the first OperationError in err's chain.
// Other errors count as execution errors.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeExecution
}

// WrapError classifies an error returned by a step. Errors that already
// carry a type keep it; context errors become timeouts or cancellations.
func WrapError(err error, step string, timeout string) *OperationError {
	if err == nil {
		return nil
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.Step == "" {
			opErr.Step = step
		}
		return opErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e := NewTimeoutError(step, timeout)
		e.Cause = err
		return e
	case errors.Is(err, context.Canceled):
		e := NewCancellationError(step)
		e.Cause = err
		return e
	}
	return NewExecutionError(step, err)
}
