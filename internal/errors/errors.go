package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeNotFound           ErrorType = "NOT_FOUND"
	ErrorTypeAmbiguous          ErrorType = "AMBIGUOUS_ABBREVIATION"
	ErrorTypeInvalidOperation   ErrorType = "INVALID_OPERATION"
	ErrorTypeDangerousOverwrite ErrorType = "DANGEROUS_OVERWRITE"
	ErrorTypeMergeConflict      ErrorType = "MERGE_CONFLICT"
	ErrorTypeInternal           ErrorType = "INTERNAL"
)

// Sentinels for errors.Is. Matching is by Type only.
var (
	ErrNotFound           = &Error{Type: ErrorTypeNotFound}
	ErrAmbiguous          = &Error{Type: ErrorTypeAmbiguous}
	ErrInvalidOperation   = &Error{Type: ErrorTypeInvalidOperation}
	ErrDangerousOverwrite = &Error{Type: ErrorTypeDangerousOverwrite}
	ErrMergeConflict      = &Error{Type: ErrorTypeMergeConflict}
	ErrInternal           = &Error{Type: ErrorTypeInternal}
)

const untrackedInTheWay = "There is an untracked file in the way; delete it, or add and commit it first."

type Error struct {
	Type    ErrorType      `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Wrapped error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

func (e *Error) Is(target error) bool {
	var t *Error
	if stderrors.As(target, &t) {
		return e.Type == t.Type
	}
	return false
}

// WithDetail attaches a key/value pair for callers that want more than the message.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func NotFound(message string) *Error {
	return &Error{Type: ErrorTypeNotFound, Message: message}
}

func Ambiguous(message string) *Error {
	return &Error{Type: ErrorTypeAmbiguous, Message: message}
}

func InvalidOperation(message string) *Error {
	return &Error{Type: ErrorTypeInvalidOperation, Message: message}
}

func DangerousOverwrite(names []string) *Error {
	return (&Error{Type: ErrorTypeDangerousOverwrite, Message: untrackedInTheWay}).
		WithDetail("files", names)
}

func MergeConflict(names []string) *Error {
	return (&Error{Type: ErrorTypeMergeConflict, Message: "Encountered a merge conflict."}).
		WithDetail("files", names)
}

func Internal(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: ErrorTypeInternal, Message: message, Wrapped: err}
}

// TypeOf reports the type of the first *Error in err's chain, or INTERNAL.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}
