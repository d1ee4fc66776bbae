// Package rendering builds the read-only resume preview and renders it as HTML or plain text.
package rendering

import "fmt"

// TemplateError represents an error parsing or executing a preview template
type TemplateError struct {
	Name    string
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s (%s): %v", e.Message, e.Name, e.Cause)
	}
	return fmt.Sprintf("template error: %s (%s)", e.Message, e.Name)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a general rendering failure
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
