// Package cachebench structured error types for probe failures
package cachebench

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Arena allocation errors
	ErrTypeAllocation ErrorType = iota
	// Latency estimate never stabilized within the trial budget
	ErrTypeConvergence
	// No sweep point satisfied the spike detection policy
	ErrTypeSpikeNotFound
	// Invalid argument errors
	ErrTypeInvalidArg
)

// BenchError represents a structured error with context
type BenchError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *BenchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cachebench %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("cachebench %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *BenchError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeAllocation:
		return "Allocation"
	case ErrTypeConvergence:
		return "Convergence"
	case ErrTypeSpikeNotFound:
		return "SpikeNotFound"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// ExitCode maps the error taxonomy onto process exit codes. A nil error
// maps to 0; anything unclassified maps to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var be *BenchError
	if !errors.As(err, &be) {
		return 1
	}
	switch be.Type {
	case ErrTypeAllocation:
		return 2
	case ErrTypeConvergence:
		return 3
	case ErrTypeSpikeNotFound:
		return 4
	default:
		return 1
	}
}

// Common error constructors

// NewAllocationError creates an arena allocation error
func NewAllocationError(op string, message string, err error) error {
	return &BenchError{
		Type:    ErrTypeAllocation,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewConvergenceError creates a convergence failure error
func NewConvergenceError(op string, message string, err error) error {
	return &BenchError{
		Type:    ErrTypeConvergence,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewSpikeNotFoundError creates a spike detection failure error
func NewSpikeNotFoundError(op string, message string) error {
	return &BenchError{
		Type:    ErrTypeSpikeNotFound,
		Op:      op,
		Message: message,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string, err error) error {
	return &BenchError{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Type check helpers

// IsAllocationError returns true if the error is allocation-related
func IsAllocationError(err error) bool {
	return isErrorType(err, ErrTypeAllocation)
}

// IsConvergenceError returns true if the error is a convergence failure
func IsConvergenceError(err error) bool {
	return isErrorType(err, ErrTypeConvergence)
}

// IsSpikeNotFoundError returns true if no spike satisfied the policy
func IsSpikeNotFoundError(err error) bool {
	return isErrorType(err, ErrTypeSpikeNotFound)
}

// IsInvalidArgError returns true if the error is an invalid argument error
func IsInvalidArgError(err error) bool {
	return isErrorType(err, ErrTypeInvalidArg)
}

func isErrorType(err error, t ErrorType) bool {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Type == t
	}
	return false
}
