package apperr

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Body is the wire shape of every error the API returns.
type Body struct {
	Kind   Kind   `json:"kind" doc:"Stable machine-readable error kind"`
	Detail string `json:"error" doc:"Human readable description"`
	status int
}

func (b *Body) Error() string  { return b.Detail }
func (b *Body) GetStatus() int { return b.status }

// NewHumaError replaces huma.NewError so that framework generated errors
// (schema validation, unsupported media type, ...) share the {kind, error}
// envelope. Schema violations are reported as 400 validation errors.
func NewHumaError(status int, msg string, errs ...error) huma.StatusError {
	kind := KindInternal
	switch {
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		status = http.StatusBadRequest
		kind = KindValidation
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindUnauthorized
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusConflict:
		kind = KindDuplicateCommitment
	case status < http.StatusInternalServerError:
		kind = KindValidation
	}
	detail := msg
	for _, err := range errs {
		if err == nil {
			continue
		}
		if detail != "" {
			detail += ": "
		}
		detail += err.Error()
	}
	return &Body{Kind: kind, Detail: detail, status: status}
}

// ToHuma converts a service error into the boundary representation. Errors
// outside the taxonomy are reported as internal without their message.
func ToHuma(err error) huma.StatusError {
	var e *Error
	if !errors.As(err, &e) {
		return &Body{Kind: KindInternal, Detail: "internal error", status: http.StatusInternalServerError}
	}
	return &Body{Kind: e.Kind, Detail: e.Message, status: e.Kind.Status()}
}
