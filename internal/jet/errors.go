package jet

import (
	"errors"
	"fmt"
)

// PropagationError represents a fatal failure during series propagation.
//
// Propagation failures include:
//   - Unsupported operation: no rule registered for an encountered op
//   - Inconsistent order: operands disagree on truncation order
//   - Call boundary: a sub-function boundary was reached (unimplemented)
//   - Bad input: entry validation rejected the call's arguments
//
// No propagation error is recoverable: the whole top-level call aborts.
type PropagationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the primitive being intercepted, when applicable.
	Op string

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes propagation errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedOp indicates no propagation rule covers the op.
	ErrCodeUnsupportedOp ErrorCode = "UNSUPPORTED_OP"

	// ErrCodeInconsistentOrder indicates operands disagree on truncation order.
	ErrCodeInconsistentOrder ErrorCode = "INCONSISTENT_ORDER"

	// ErrCodeCallBoundary indicates a sub-function call boundary was reached.
	ErrCodeCallBoundary ErrorCode = "CALL_BOUNDARY"

	// ErrCodeBadInput indicates the call was rejected at entry validation.
	ErrCodeBadInput ErrorCode = "BAD_INPUT"
)

// Error implements the error interface.
func (e *PropagationError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnsupportedOp reports whether err is an unsupported-operation error.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedOp(err error) bool { return hasCode(err, ErrCodeUnsupportedOp) }

// IsInconsistentOrder reports whether err is an order-consistency error.
func IsInconsistentOrder(err error) bool { return hasCode(err, ErrCodeInconsistentOrder) }

// IsCallBoundary reports whether err is an architectural call-boundary failure.
func IsCallBoundary(err error) bool { return hasCode(err, ErrCodeCallBoundary) }

// IsBadInput reports whether err is an entry-validation failure.
func IsBadInput(err error) bool { return hasCode(err, ErrCodeBadInput) }

func hasCode(err error, code ErrorCode) bool {
	var pe *PropagationError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

func badInput(format string, args ...any) *PropagationError {
	return &PropagationError{Code: ErrCodeBadInput, Message: fmt.Sprintf(format, args...)}
}
