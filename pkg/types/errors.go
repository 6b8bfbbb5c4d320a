package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a yangpath error code.
type ErrorCode string

// Error codes. S-codes are syntax errors raised by the lexer and reparser,
// T-codes are type and resolution errors raised by the evaluator.
const (
	// S01xx: Lexer errors
	ErrLiteralNotClosed ErrorCode = "S0101"
	ErrInvalidChar      ErrorCode = "S0102"
	ErrBadNumber        ErrorCode = "S0103"

	// S02xx: Reparser errors
	ErrUnexpectedEnd   ErrorCode = "S0201"
	ErrUnexpectedToken ErrorCode = "S0202"
	ErrExpectedToken   ErrorCode = "S0203"
	ErrUnknownFunction ErrorCode = "S0204"
	ErrArgumentCount   ErrorCode = "S0205"

	// T1xxx: Type errors
	ErrNotNodeSet      ErrorCode = "T1001"
	ErrCastUnsupported ErrorCode = "T1002"
	ErrUnknownPrefix   ErrorCode = "T1003"
	ErrInvalidContext  ErrorCode = "T1004"
	ErrArgumentType    ErrorCode = "T1005"
)

// ErrRetry signals that a result cannot be determined yet because the
// evaluation crossed a node whose "when" applicability is still pending.
//
// It is not an error in the usual sense: the evaluator propagates it
// verbatim through every call frame, and the caller is expected to
// re-invoke the whole evaluation once more dependencies have settled.
// Check for it with errors.Is; never wrap it with additional context.
var ErrRetry = errors.New("yangpath: dependency not yet resolved, retry later")

// IsRetry reports whether err is the retry signal.
func IsRetry(err error) bool {
	return errors.Is(err, ErrRetry)
}

// Error represents a structured yangpath error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new yangpath error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s at position %d: %s (token %q)", e.Code, e.Position, e.Message, e.Token)
	}
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
