// Package server provides the HTTP API for the resume builder.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/assist"
	"github.com/jonathan/resume-builder/internal/assistclient"
	"github.com/jonathan/resume-builder/internal/document"
	"github.com/jonathan/resume-builder/internal/schemas"
)

// ErrNotFound indicates a session or saved resume that does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrConflict indicates a change that clashes with the document's current state
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrSessionLimit indicates the session registry is full
type ErrSessionLimit struct {
	Max int
}

func (e *ErrSessionLimit) Error() string {
	return fmt.Sprintf("session limit reached (%d)", e.Max)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalidSection *document.InvalidSectionError
		invalidField   *document.InvalidFieldError
		decodeErr      *document.DecodeError
		loadErr        *document.LoadError
		schemaErr      *schemas.ValidationError
		assistErr      *assist.ValidationError
		validationErr  *ErrValidation
		notFound       *ErrNotFound
		conflict       *ErrConflict
		sessionLimit   *ErrSessionLimit
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &invalidSection), errors.As(err, &invalidField),
		errors.As(err, &decodeErr), errors.As(err, &loadErr),
		errors.As(err, &schemaErr), errors.As(err, &assistErr),
		errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict), errors.Is(err, assistclient.ErrInFlight):
		return http.StatusConflict
	case errors.As(err, &sessionLimit):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the JSON error payload for err.
func errorBody(err error) map[string]any {
	var (
		formatErr *assist.ResponseFormatError
		schemaErr *schemas.ValidationError
		assistErr *assist.ValidationError
	)
	switch {
	case errors.As(err, &formatErr):
		return formatErr.Body()
	case errors.As(err, &schemaErr):
		return map[string]any{"error": schemaErr.Summary(), "details": schemaErr.Errors}
	case errors.As(err, &assistErr):
		return map[string]any{"error": assistErr.Message}
	default:
		return map[string]any{"error": err.Error()}
	}
}
