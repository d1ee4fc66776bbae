package assist

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxRawResponse bounds the model text carried back to callers in a ResponseFormatError.
const MaxRawResponse = 1000

// ValidationError reports a request that is missing a required field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ResponseFormatError reports model output that could not be used
type ResponseFormatError struct {
	Capability string
	Detail     string
	// Raw is the model's text when it was not valid JSON.
	Raw string
	// Received is the decoded value when the JSON had the wrong shape.
	Received any
	// ReceivedKey names Received in Body. Empty means "received_structure".
	ReceivedKey string
}

func (e *ResponseFormatError) Error() string {
	return e.Detail
}

// RawResponse returns Raw cut to MaxRawResponse runes.
func (e *ResponseFormatError) RawResponse() string {
	if utf8.RuneCountInString(e.Raw) <= MaxRawResponse {
		return e.Raw
	}
	return string([]rune(e.Raw)[:MaxRawResponse])
}

// Body is the HTTP error payload: the detail plus either the raw text or the
// decoded value.
func (e *ResponseFormatError) Body() map[string]any {
	body := map[string]any{"error": e.Detail}
	if e.Received == nil {
		body["raw_ai_response"] = e.RawResponse()
		return body
	}
	key := e.ReceivedKey
	if key == "" {
		key = "received_structure"
	}
	body[key] = e.Received
	return body
}

// GenerationError wraps a failed call to the model provider
type GenerationError struct {
	Capability string
	Cause      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("An unexpected error occurred %s: %v", generationContext[e.Capability], e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

var generationContext = map[string]string{
	CapabilitySummary:    "while generating the summary",
	CapabilityExperience: "while enhancing the experience",
	CapabilityProject:    "while enhancing the project",
	CapabilitySkills:     "while suggesting skills",
	CapabilityReview:     "during section review",
}

// Outcome classifies an error for metrics labels.
func Outcome(err error) string {
	var validationErr *ValidationError
	var formatErr *ResponseFormatError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &validationErr):
		return "invalid_request"
	case errors.As(err, &formatErr):
		return "bad_response"
	default:
		return "error"
	}
}
