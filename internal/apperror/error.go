// Package apperror defines the error shape returned across the core
// boundary. Every non-fatal failure is data: a Kind, an optional field path
// and a message, so the HTTP layer can render it without knowing anything
// about the graph.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/agenthands/playbill/internal/core/model"
)

// Kind classifies an error for handling purposes.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindStructuralViolation Kind = "structural_violation"
	KindDuplicateRecord     Kind = "duplicate_record"
	KindReferenceNotFound   Kind = "reference_not_found"
	KindUndeletableEntity   Kind = "undeletable_entity"
	KindNotFound            Kind = "not_found"
	KindStorageUnavailable  Kind = "storage_unavailable"
)

// FieldError scopes a failure to one field of a write payload.
type FieldError struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the uniform {kind, field?, message} error. Field and Message
// mirror the first entry of Fields when the error is field-scoped.
type Error struct {
	Kind         Kind         `json:"kind"`
	Field        string       `json:"field,omitempty"`
	Message      string       `json:"message"`
	Fields       []FieldError `json:"fields,omitempty"`
	Associations []model.Kind `json:"associations,omitempty"`
	Err          error        `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(" [")
		b.WriteString(e.Field)
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, " (%v)", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindStructuralViolation, KindDuplicateRecord, KindReferenceNotFound:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindUndeletableEntity:
		return http.StatusConflict
	case KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsFatal reports whether the request cannot be recovered by the caller
// changing its input.
func (e *Error) IsFatal() bool {
	return e.Kind == KindStorageUnavailable
}

// NotFound reports a missing subject.
func NotFound(kind model.Kind, uuid string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %q not found", kind.Label(), uuid),
	}
}

// Undeletable reports a delete refused because of remaining associations.
func Undeletable(kind model.Kind, associations []model.Kind) *Error {
	names := make([]string, len(associations))
	for i, a := range associations {
		names[i] = a.Label()
	}
	return &Error{
		Kind:         KindUndeletableEntity,
		Message:      fmt.Sprintf("Cannot delete %s with associations: %s", kind.Label(), strings.Join(names, ", ")),
		Associations: associations,
	}
}

// Storage wraps a failure of the storage collaborator. It returns err
// unchanged when it already is an *Error.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{
		Kind:    KindStorageUnavailable,
		Message: "storage unavailable",
		Err:     err,
	}
}

// Invalid builds a single field-scoped error.
func Invalid(kind Kind, field, message string) *Error {
	return &Error{
		Kind:    kind,
		Field:   field,
		Message: message,
		Fields:  []FieldError{{Kind: kind, Field: field, Message: message}},
	}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
