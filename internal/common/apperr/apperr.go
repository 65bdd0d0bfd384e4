// Package apperr is the error taxonomy shared by every layer of the envelope
// service. Each error carries a stable machine-readable Kind and a message
// that is safe to hand to a caller; the wrapped cause stays server-side.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation          Kind = "validation"
	KindKeyFormat           Kind = "key_format"
	KindKeyImport           Kind = "key_import"
	KindAuthentication      Kind = "authentication"
	KindDuplicateCommitment Kind = "duplicate_commitment"
	KindNotFound            Kind = "not_found"
	KindUnauthorized        Kind = "unauthorized"
	KindStorage             Kind = "storage"
	KindInternal            Kind = "internal"
)

// Status maps a kind onto the HTTP status used at the boundary.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindKeyFormat, KindKeyImport:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindDuplicateCommitment:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause that is reachable through errors.Unwrap but never
// rendered by Error.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind, so sentinel-style comparisons such
// as errors.Is(err, apperr.New(apperr.KindNotFound, "")) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func Validation(message string) *Error { return New(KindValidation, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

func Storage(err error, message string) *Error { return Wrap(err, KindStorage, message) }

// Authentication returns the single caller-facing message used for every
// unwrap or tag failure.
func Authentication(err error) *Error {
	return Wrap(err, KindAuthentication, "envelope authentication failed")
}
