// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-objpool.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrOutOfMemory        = errors.New("out of memory")
	ErrConstructionFailed = errors.New("object construction failed")
	ErrInvariantViolation = errors.New("pool invariant violation")
	ErrPoolClosed         = errors.New("pool is closed")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotSupported       = errors.New("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeOutOfMemory
	ErrCodeConstructionFailed
	ErrCodeInvariantViolation
	ErrCodePoolClosed
	ErrCodeInvalidArgument
	ErrCodeNotSupported
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeOutOfMemory:        ErrOutOfMemory,
	ErrCodeConstructionFailed: ErrConstructionFailed,
	ErrCodeInvariantViolation: ErrInvariantViolation,
	ErrCodePoolClosed:         ErrPoolClosed,
	ErrCodeInvalidArgument:    ErrInvalidArgument,
	ErrCodeNotSupported:       ErrNotSupported,
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeOutOfMemory:
		return "out_of_memory"
	case ErrCodeConstructionFailed:
		return "construction_failed"
	case ErrCodeInvariantViolation:
		return "invariant_violation"
	case ErrCodePoolClosed:
		return "pool_closed"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeNotSupported:
		return "not_supported"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Error represents a structured error with code and context.
// errors.Is matches both the sentinel of its code and the wrapped cause.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the code sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if s, ok := codeSentinels[e.Code]; ok {
		out = append(out, s)
	}
	if e.cause != nil {
		out = append(out, e.cause)
	}
	return out
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause records the error that triggered e.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// CodeOf extracts the ErrorCode carried by err. Nil maps to ErrCodeOK,
// errors outside the taxonomy map to -1.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	for code, s := range codeSentinels {
		if errors.Is(err, s) {
			return code
		}
	}
	return ErrorCode(-1)
}
