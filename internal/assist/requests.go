package assist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SummaryRequest asks for a refined professional summary
type SummaryRequest struct {
	JobTitle       string `json:"jobTitle"`
	CurrentSummary string `json:"currentSummary"`
}

// SummarySuggestion is an alternative summary pitched at one seniority level
type SummarySuggestion struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// SummaryResponse is the refined summary plus exactly two alternatives
type SummaryResponse struct {
	RefinedSummary string              `json:"refinedSummary"`
	Suggestions    []SummarySuggestion `json:"suggestions"`
}

// ExperienceRequest asks for an experience draft rewritten as bullets
type ExperienceRequest struct {
	JobTitle string `json:"jobTitle"`
	Company  string `json:"company"`
	Summary  string `json:"summary" validate:"required"`
}

// ExperienceResponse carries "• " bullets separated by newlines
type ExperienceResponse struct {
	EnhancedSummary string `json:"enhancedSummary"`
}

// ProjectRequest asks for a project description rewritten as bullets
type ProjectRequest struct {
	Title       string `json:"title"`
	Tech        Tech   `json:"tech"`
	Description string `json:"description" validate:"required"`
}

// ProjectResponse carries "• " bullets separated by newlines
type ProjectResponse struct {
	EnhancedDescription string `json:"enhancedDescription"`
}

// SkillsRequest asks for skills relevant to a job title
type SkillsRequest struct {
	JobTitle string     `json:"jobTitle" validate:"required"`
	Skills   SkillNames `json:"skills"`
}

// SkillsResponse lists suggestions not already in the request's skills
type SkillsResponse struct {
	SuggestedSkills []string `json:"suggestedSkills"`
}

// ReviewRequest asks for a proofreading pass over one section's text
type ReviewRequest struct {
	SectionName string `json:"sectionName"`
	Text        string `json:"text"`
}

// ReviewSuggestion is one issue found while proofreading
type ReviewSuggestion struct {
	Type        string `json:"type"`
	Original    string `json:"original,omitempty"`
	Suggestion  string `json:"suggestion"`
	Explanation string `json:"explanation,omitempty"`
}

// ReviewResponse lists issues; an empty list means nothing was found
type ReviewResponse struct {
	Suggestions []ReviewSuggestion `json:"suggestions"`
}

// Tech is a project's technologies, accepted as one string or a list of names.
type Tech string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tech) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return fmt.Errorf("tech must be a string or a list of strings: %w", err)
		}
		*t = Tech(strings.Join(names, ", "))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tech must be a string or a list of strings: %w", err)
	}
	*t = Tech(s)
	return nil
}

// SkillNames is the caller's current skill list. Anything other than a list of
// strings decodes as an empty list.
type SkillNames []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *SkillNames) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		*s = nil
		return nil
	}
	*s = names
	return nil
}
