package xerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so transport layers can map it without string matching.
type Kind string

const (
	KindNotFound             Kind = "NOT_FOUND"
	KindInvalidTransition    Kind = "INVALID_TRANSITION"
	KindMissingRequiredField Kind = "MISSING_REQUIRED_FIELD"
	KindAlreadyConverted     Kind = "ALREADY_CONVERTED"
	KindDuplicateMembership  Kind = "DUPLICATE_MEMBERSHIP"
	KindCrossTenantReference Kind = "CROSS_TENANT_REFERENCE"
	KindNoPipelineStage      Kind = "NO_PIPELINE_STAGE"
	KindInvalidInput         Kind = "INVALID_INPUT"
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindForbidden            Kind = "FORBIDDEN"
	KindConflict             Kind = "CONFLICT"
	KindInternal             Kind = "INTERNAL"
)

// Error is an application error carrying its kind and a human readable reason.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports kind equality, so errors.Is(err, ErrNotFound) matches every NotFound error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithCause wraps an underlying error with a kind and message.
func WithCause(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Common reusable application errors
var (
	ErrNotFound             = New(KindNotFound, "resource not found")
	ErrInvalidTransition    = New(KindInvalidTransition, "invalid status transition")
	ErrMissingRequiredField = New(KindMissingRequiredField, "missing required field")
	ErrAlreadyConverted     = New(KindAlreadyConverted, "lead has already been converted")
	ErrDuplicateMembership  = New(KindDuplicateMembership, "entity is already a member of this campaign")
	ErrCrossTenantReference = New(KindCrossTenantReference, "referenced entity belongs to a different tenant")
	ErrNoPipelineStage      = New(KindNoPipelineStage, "tenant has no pipeline stages")
	ErrInvalidInput         = New(KindInvalidInput, "invalid input")
	ErrUnauthorized         = New(KindUnauthorized, "unauthorized access")
	ErrForbidden            = New(KindForbidden, "forbidden")
	ErrConflict             = New(KindConflict, "conflict: resource already exists")
	ErrInternal             = New(KindInternal, "internal server error")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
