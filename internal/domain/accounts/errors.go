package accounts

import (
	"errors"
	"fmt"
)

// Code is a stable business error code.
type Code string

const (
	CodeEmptyAccountID       Code = "EmptyAccountId"
	CodeEmptyOwnerIDs        Code = "EmptyOwnerIds"
	CodeOwnerIDsContainEmpty Code = "OwnerIdsContainEmpty"
	CodeInvalidAmount        Code = "InvalidAmount"
	CodeInsufficientFunds    Code = "InsufficientFunds"
	CodeAccountNotFound      Code = "AccountNotFound"
	CodeSameAccount          Code = "SameAccount"
)

// Error is a business-rule or construction failure. Two errors match under
// errors.Is when their codes are equal, so the sentinels below work no matter
// which message a call site attached.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || other == nil || e == nil {
		return false
	}
	return e.Code == other.Code
}

var (
	ErrEmptyAccountID       = &Error{Code: CodeEmptyAccountID, Message: "account id must not be empty"}
	ErrEmptyOwnerIDs        = &Error{Code: CodeEmptyOwnerIDs, Message: "account must have at least one owner"}
	ErrOwnerIDsContainEmpty = &Error{Code: CodeOwnerIDsContainEmpty, Message: "owner ids must not contain an empty id"}
	ErrInvalidAmount        = &Error{Code: CodeInvalidAmount, Message: "amount must be greater than zero"}
	ErrInsufficientFunds    = &Error{Code: CodeInsufficientFunds, Message: "insufficient funds"}
	ErrAccountNotFound      = &Error{Code: CodeAccountNotFound, Message: "account not found"}
	ErrSameAccount          = &Error{Code: CodeSameAccount, Message: "cannot transfer to the same account"}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the business code from err, or "" when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) || e == nil {
		return ""
	}
	return e.Code
}

// IsConstructionError reports whether err rejected creation of an Account.
func IsConstructionError(err error) bool {
	switch CodeOf(err) {
	case CodeEmptyAccountID, CodeEmptyOwnerIDs, CodeOwnerIDsContainEmpty:
		return true
	default:
		return false
	}
}
