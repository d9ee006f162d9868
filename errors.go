package cardgate

import "errors"

// Error is the error type returned by every operation in this package.
// Code is a dotted hierarchical tag such as "Client.Request.JSON.Invalid"
// or "Transaction.Not.Initialized"; callers branch on code prefixes rather
// than on message text.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// ErrorCode extracts the dotted code from err, or returns the empty string
// when err does not originate from this package.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
