package tracker

import (
	"errors"
	"fmt"
)

// Kind classifies tracker failures so callers can map them to responses.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is a typed tracker failure. errors.Is matches any Error of the same
// Kind against the ErrValidation / ErrNotFound / ErrConflict sentinels.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation = &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: "validation failed"}
	ErrNotFound   = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "resource not found"}
	ErrConflict   = &Error{Kind: KindConflict, Code: "CONFLICT", Message: "operation not allowed in current state"}
)

func validationf(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func conflictf(code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string, id uint) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf("%s %d not found", entity, id)}
}

// KindOf returns the Kind of err, or 0 when err is not a tracker error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
