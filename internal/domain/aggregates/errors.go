package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a failed aggregate operation for callers that decide
// whether to retry, report, or map it to a transport status.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeRetriesExhausted   ErrorCode = "retries_exhausted"
	CodeCanceled           ErrorCode = "canceled"
	CodeInternal           ErrorCode = "internal"
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

// Error renders "op: message (code)", dropping whichever parts are empty.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	if e.Message != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Message)
	}
	if b.Len() == 0 {
		return string(e.Code)
	}
	fmt.Fprintf(&b, " (%s)", e.Code)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError trims op and message; cause stays reachable through Unwrap.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap classifies err under code, reusing its text as the message.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode reports whether the outermost aggregate error in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the aggregate error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// IsConflict reports whether err is a write conflict that a fresh attempt may resolve.
func IsConflict(err error) bool {
	switch CodeOf(err) {
	case CodeConflict, CodeRetryable:
		return true
	default:
		return false
	}
}
