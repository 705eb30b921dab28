// Package apierror renders RFC 9457 problem details for every failed request.
package apierror

import (
	"net/http"
)

const (
	TypeValidation   = "urn:fieldops:error:validation"
	TypeBadRequest   = "urn:fieldops:error:bad_request"
	TypeUnauthorized = "urn:fieldops:error:unauthorized"
	TypeForbidden    = "urn:fieldops:error:forbidden"
	TypeNotFound     = "urn:fieldops:error:not_found"
	TypeConflict     = "urn:fieldops:error:conflict"
	TypeInternal     = "urn:fieldops:error:internal"
)

// ProblemDetails is the JSON body of every error response.
type ProblemDetails struct {
	Type      string       `json:"type"`
	Title     string       `json:"title"`
	Status    int          `json:"status"`
	Detail    string       `json:"detail,omitempty"`
	Instance  string       `json:"instance,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

func newProblem(typ string, status int, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   typ,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

func BadRequest(detail string) *ProblemDetails {
	return newProblem(TypeBadRequest, http.StatusBadRequest, detail)
}

func Validation(fields ...FieldError) *ProblemDetails {
	p := newProblem(TypeValidation, http.StatusBadRequest, "request validation failed")
	p.Errors = fields
	return p
}

func Unauthorized(detail string) *ProblemDetails {
	return newProblem(TypeUnauthorized, http.StatusUnauthorized, detail)
}

func Forbidden(detail string) *ProblemDetails {
	return newProblem(TypeForbidden, http.StatusForbidden, detail)
}

func NotFound(detail string) *ProblemDetails {
	return newProblem(TypeNotFound, http.StatusNotFound, detail)
}

func Conflict(detail string) *ProblemDetails {
	return newProblem(TypeConflict, http.StatusConflict, detail)
}

// Internal hides the underlying error text from clients.
func Internal() *ProblemDetails {
	return newProblem(TypeInternal, http.StatusInternalServerError, "")
}

// typeForStatus picks the problem type used when wrapping a bare *fiber.Error.
func typeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return TypeBadRequest
	case http.StatusUnauthorized:
		return TypeUnauthorized
	case http.StatusForbidden:
		return TypeForbidden
	case http.StatusNotFound:
		return TypeNotFound
	case http.StatusConflict:
		return TypeConflict
	default:
		return TypeInternal
	}
}
