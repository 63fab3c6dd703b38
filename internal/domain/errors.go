package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so transports can pick a response status.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a domain failure tagged with its kind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrUserNotFound is returned when a user id does not match any user.
	ErrUserNotFound = &Error{Kind: KindNotFound, Message: "unknown user id"}
	// ErrUsernameTaken is returned when creating a user with an existing username.
	ErrUsernameTaken = &Error{Kind: KindConflict, Message: "username already taken"}
)

// NewValidationError builds a KindValidation error.
func NewValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
