// Package document provides the pure state transitions over a ResumeDocument.
package document

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/types"
)

// InvalidSectionError indicates an operation named a section it cannot act on
type InvalidSectionError struct {
	Section types.Section
	Reason  string
}

func (e *InvalidSectionError) Error() string {
	return fmt.Sprintf("invalid section %q: %s", e.Section, e.Reason)
}

// InvalidFieldError indicates a nested field that does not exist in its section
type InvalidFieldError struct {
	Section types.Section
	Field   string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q in section %q", e.Field, e.Section)
}

// DecodeError represents a value that cannot be decoded into the section's schema
type DecodeError struct {
	Section types.Section
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode error: section %q: %v", e.Section, e.Cause)
	}
	return fmt.Sprintf("decode error: section %q", e.Section)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// LoadError represents a payload that is not a JSON object at all
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
