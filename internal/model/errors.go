package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrorKind classifies failures for the transport layer.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidOperation
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// FieldError describes a validation failure of a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified moderation failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// NewErrValidation returns a validation error with optional field details.
func NewErrValidation(message string, fields ...FieldError) *Error {
	if message == "" && len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f.Message)
		}
		message = strings.Join(parts, "; ")
	}
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NewErrMaterialNotFound(id uuid.UUID) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("material %s not found", id)}
}

func NewErrUserNotFound(id uuid.UUID) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("user %s not found", id)}
}

func NewErrAlreadyVerified(id uuid.UUID) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf("material %s is already approved", id)}
}

func NewErrAlreadyRejected(id uuid.UUID) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf("material %s is already rejected", id)}
}

func NewErrAlreadyAdmin(id uuid.UUID) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf("user %s is already an admin", id)}
}

func NewErrNotAdmin(id uuid.UUID) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf("user %s is not an admin", id)}
}

func NewErrSelfPromotion() *Error {
	return &Error{Kind: KindInvalidOperation, Message: "cannot promote yourself"}
}

func NewErrSelfDemotion() *Error {
	return &Error{Kind: KindInvalidOperation, Message: "cannot demote yourself"}
}

func NewErrLastAdmin() *Error {
	return &Error{Kind: KindInvalidOperation, Message: "cannot demote the last admin"}
}

func NewErrUnauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func NewErrForbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "admin access required"}
}

// NewErrUnavailable wraps a store or transaction failure.
func NewErrUnavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: "moderation store unavailable", Err: err}
}
