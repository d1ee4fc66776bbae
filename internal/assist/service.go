// Package assist implements the writing assistant: summary drafting, bullet
// rewriting, skill suggestions and proofreading on top of an llm.Client.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/rs/zerolog"
)

// Capability names, shared by prompts, logs and metrics.
const (
	CapabilitySummary    = "generate-summary"
	CapabilityExperience = "enhance-experience"
	CapabilityProject    = "enhance-project"
	CapabilitySkills     = "suggest-skills"
	CapabilityReview     = "review-section"
)

// Defaults substituted into prompts for absent request fields.
const (
	NotProvided       = "Not Provided"
	NoSummaryDraft    = "No draft provided. Please write a professional summary."
	DefaultTargetRole = "target job"
	UnnamedProject    = "Unnamed Project"
	TechNotSpecified  = "Not Specified"
	NoSkillsProvided  = "None provided"
	UnknownSection    = "Unknown Section"
)

// DefaultConcurrency bounds ReviewDocument when no option is given.
const DefaultConcurrency = 4

var requiredMessages = map[string]string{
	"ExperienceRequest.Summary":  "No experience summary provided",
	"ProjectRequest.Description": "No project description provided",
	"SkillsRequest.JobTitle":     "Job title is required to suggest relevant skills",
}

// Observer receives one call per capability invocation.
type Observer func(capability, outcome string, elapsed time.Duration)

// Service runs the assistant capabilities against one model client
type Service struct {
	client      llm.Client
	tier        llm.ModelTier
	validate    *validator.Validate
	logger      zerolog.Logger
	observe     Observer
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithTier selects the model tier used for every call.
func WithTier(tier llm.ModelTier) Option {
	return func(s *Service) { s.tier = tier }
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithObserver installs a per-call hook, typically metrics.
func WithObserver(fn Observer) Option {
	return func(s *Service) { s.observe = fn }
}

// WithConcurrency bounds the parallel section reviews of ReviewDocument.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a Service backed by client.
func NewService(client llm.Client, opts ...Option) *Service {
	s := &Service{
		client:      client,
		tier:        llm.TierStandard,
		validate:    validator.New(),
		logger:      zerolog.Nop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateSummary refines a summary draft and proposes mid-level and junior-level alternatives.
func (s *Service) GenerateSummary(ctx context.Context, req SummaryRequest) (resp *SummaryResponse, err error) {
	defer s.track(CapabilitySummary, time.Now(), &err)

	if req.JobTitle == "" {
		s.logger.Warn().Msg("generating summary without job title context")
	}
	text, err := s.run(ctx, CapabilitySummary, map[string]string{
		"JobTitle":       orDefault(req.JobTitle, NotProvided),
		"CurrentSummary": orDefault(req.CurrentSummary, NoSummaryDraft),
		"TargetRole":     orDefault(req.JobTitle, DefaultTargetRole),
	})
	if err != nil {
		return nil, err
	}
	return parseSummary(text)
}

// EnhanceExperience rewrites an experience summary into bullet points.
func (s *Service) EnhanceExperience(ctx context.Context, req ExperienceRequest) (resp *ExperienceResponse, err error) {
	defer s.track(CapabilityExperience, time.Now(), &err)

	if err := s.check(req); err != nil {
		return nil, err
	}
	text, err := s.run(ctx, CapabilityExperience, map[string]string{
		"JobTitle": orDefault(req.JobTitle, NotProvided),
		"Company":  orDefault(req.Company, NotProvided),
		"Summary":  req.Summary,
	})
	if err != nil {
		return nil, err
	}
	bullets, err := parseBullets(text, CapabilityExperience, "enhancedSummary", "experience")
	if err != nil {
		return nil, err
	}
	return &ExperienceResponse{EnhancedSummary: bullets}, nil
}

// EnhanceProject rewrites a project description into bullet points.
func (s *Service) EnhanceProject(ctx context.Context, req ProjectRequest) (resp *ProjectResponse, err error) {
	defer s.track(CapabilityProject, time.Now(), &err)

	if err := s.check(req); err != nil {
		return nil, err
	}
	text, err := s.run(ctx, CapabilityProject, map[string]string{
		"Title":       orDefault(req.Title, UnnamedProject),
		"Tech":        orDefault(string(req.Tech), TechNotSpecified),
		"Description": req.Description,
	})
	if err != nil {
		return nil, err
	}
	bullets, err := parseBullets(text, CapabilityProject, "enhancedDescription", "project")
	if err != nil {
		return nil, err
	}
	return &ProjectResponse{EnhancedDescription: bullets}, nil
}

// SuggestSkills proposes skills for a job title, excluding ones the caller already lists.
func (s *Service) SuggestSkills(ctx context.Context, req SkillsRequest) (resp *SkillsResponse, err error) {
	defer s.track(CapabilitySkills, time.Now(), &err)

	if err := s.check(req); err != nil {
		return nil, err
	}
	skills := NoSkillsProvided
	if len(req.Skills) > 0 {
		skills = strings.Join(req.Skills, ", ")
	}
	text, err := s.run(ctx, CapabilitySkills, map[string]string{
		"JobTitle": req.JobTitle,
		"Skills":   skills,
	})
	if err != nil {
		return nil, err
	}
	suggested, err := parseSkills(text)
	if err != nil {
		return nil, err
	}
	return &SkillsResponse{SuggestedSkills: FilterSkills(suggested, req.Skills)}, nil
}

// ReviewSection proofreads one section. Empty text yields no suggestions without a model call.
func (s *Service) ReviewSection(ctx context.Context, req ReviewRequest) (resp *ReviewResponse, err error) {
	if req.SectionName == "" {
		req.SectionName = UnknownSection
	}
	if req.Text == "" {
		s.logger.Debug().Str("section", req.SectionName).Msg("review requested for empty section")
		return &ReviewResponse{Suggestions: []ReviewSuggestion{}}, nil
	}
	defer s.track(CapabilityReview, time.Now(), &err)

	text, err := s.run(ctx, CapabilityReview, map[string]string{
		"SectionName": req.SectionName,
		"Text":        req.Text,
	})
	if err != nil {
		return nil, err
	}
	return parseReview(text, req.SectionName)
}

func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: "validation error: invalid request"}
	}
	fe := verrs[0]
	msg, ok := requiredMessages[fe.StructNamespace()]
	if !ok {
		msg = fmt.Sprintf("validation error: %s - %s", fe.Field(), fe.Tag())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

func (s *Service) run(ctx context.Context, capability string, data map[string]string) (string, error) {
	prompt, err := prompts.Render(prompts.AssistFile, capability, data)
	if err != nil {
		return "", fmt.Errorf("failed to build %s prompt: %w", capability, err)
	}

	s.logger.Debug().Str("capability", capability).Str("model", s.client.GetModel(s.tier)).Msg("sending prompt")
	text, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		return "", &GenerationError{Capability: capability, Cause: err}
	}
	s.logger.Debug().Str("capability", capability).Int("bytes", len(text)).Msg("received response")
	return text, nil
}

func (s *Service) track(capability string, start time.Time, errp *error) {
	outcome := Outcome(*errp)
	elapsed := time.Since(start)
	if *errp != nil {
		s.logger.Warn().Err(*errp).Str("capability", capability).Str("outcome", outcome).Msg("assist call failed")
	}
	if s.observe != nil {
		s.observe(capability, outcome, elapsed)
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// NormalizeBullets prefixes every non-empty line with "• " when the text has no
// bullet marker at all. Text that already has one is returned unchanged.
func NormalizeBullets(text string) string {
	if strings.Contains(text, "•") || strings.TrimSpace(text) == "" {
		return text
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, "• "+line)
		}
	}
	return strings.Join(lines, "\n")
}

// FilterSkills trims suggestions, drops empties and removes names already in
// existing, comparing case-insensitively.
func FilterSkills(suggested, existing []string) []string {
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[strings.ToLower(strings.TrimSpace(name))] = true
	}
	out := make([]string, 0, len(suggested))
	for _, name := range suggested {
		name = strings.TrimSpace(name)
		if name == "" || have[strings.ToLower(name)] {
			continue
		}
		out = append(out, name)
	}
	return out
}

// decodeObject parses the model's JSON. A nil map means the text was not a
// non-empty JSON object.
func decodeObject(text string) (map[string]json.RawMessage, any) {
	var received any
	if err := json.Unmarshal([]byte(text), &received); err != nil {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil || len(obj) == 0 {
		return nil, received
	}
	return obj, received
}

func formatError(capability, detail, text string, received any) *ResponseFormatError {
	e := &ResponseFormatError{Capability: capability, Detail: detail, Received: received}
	if received == nil {
		e.Raw = text
	}
	return e
}

func parseSummary(text string) (*SummaryResponse, error) {
	obj, received := decodeObject(text)
	if obj == nil {
		if received == nil {
			return nil, formatError(CapabilitySummary, "AI failed to return valid JSON.", text, nil)
		}
		return nil, formatError(CapabilitySummary, "AI returned data in an unexpected format.", text, received)
	}

	rawSummary, hasSummary := obj["refinedSummary"]
	rawSuggestions, hasSuggestions := obj["suggestions"]
	if !hasSummary || !hasSuggestions {
		return nil, formatError(CapabilitySummary, "AI response missing required fields ('refinedSummary', 'suggestions').", text, received)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawSuggestions, &items); err != nil || len(items) != 2 {
		return nil, formatError(CapabilitySummary, "AI response 'suggestions' field is not a list of two items.", text, received)
	}

	resp := &SummaryResponse{Suggestions: make([]SummarySuggestion, 0, 2)}
	if err := json.Unmarshal(rawSummary, &resp.RefinedSummary); err != nil || bytesIsNull(rawSummary) {
		return nil, formatError(CapabilitySummary, "AI returned data in an unexpected format.", text, received)
	}
	for _, item := range items {
		var fields map[string]json.RawMessage
		var sug SummarySuggestion
		if json.Unmarshal(item, &fields) != nil || fields["level"] == nil || fields["text"] == nil ||
			json.Unmarshal(item, &sug) != nil {
			return nil, formatError(CapabilitySummary, "AI returned data in an unexpected format.", text, received)
		}
		resp.Suggestions = append(resp.Suggestions, sug)
	}
	return resp, nil
}

func parseBullets(text, capability, field, noun string) (string, error) {
	obj, received := decodeObject(text)
	if obj == nil {
		if received == nil {
			return "", formatError(capability, fmt.Sprintf("AI failed to return valid JSON for %s.", noun), text, nil)
		}
		return "", formatError(capability, fmt.Sprintf("AI returned data in an unexpected format for %s.", noun), text, received)
	}
	raw, ok := obj[field]
	if !ok {
		return "", formatError(capability, fmt.Sprintf("AI response missing required '%s' field.", field), text, received)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil || bytesIsNull(raw) {
		return "", formatError(capability, fmt.Sprintf("AI returned data in an unexpected format for %s.", noun), text, received)
	}
	return NormalizeBullets(value), nil
}

func parseSkills(text string) ([]string, error) {
	obj, received := decodeObject(text)
	if obj == nil {
		if received == nil {
			return nil, formatError(CapabilitySkills, "AI failed to return valid JSON for skills.", text, nil)
		}
		return nil, formatError(CapabilitySkills, "AI returned data in an unexpected format for skills.", text, received)
	}
	raw, ok := obj["suggestedSkills"]
	var items []json.RawMessage
	if !ok || json.Unmarshal(raw, &items) != nil || bytesIsNull(raw) {
		return nil, formatError(CapabilitySkills, "AI response missing or invalid 'suggestedSkills' array.", text, received)
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if json.Unmarshal(item, &name) != nil || bytesIsNull(item) {
			return nil, formatError(CapabilitySkills, "AI returned data in an unexpected format for skills.", text, received)
		}
		names = append(names, name)
	}
	return names, nil
}

func parseReview(text, section string) (*ReviewResponse, error) {
	obj, received := decodeObject(text)
	if obj == nil {
		if received == nil {
			return nil, formatError(CapabilityReview, fmt.Sprintf("AI failed to return valid JSON for review (%s).", section), text, nil)
		}
		return nil, formatError(CapabilityReview, fmt.Sprintf("AI returned data in an unexpected format for review (%s).", section), text, received)
	}
	raw, ok := obj["suggestions"]
	var items []map[string]json.RawMessage
	if !ok || json.Unmarshal(raw, &items) != nil || bytesIsNull(raw) {
		return nil, formatError(CapabilityReview, fmt.Sprintf("AI response missing or invalid 'suggestions' array for review (%s).", section), text, received)
	}

	resp := &ReviewResponse{Suggestions: make([]ReviewSuggestion, 0, len(items))}
	for _, item := range items {
		sug, ok := reviewItem(item)
		if !ok {
			var list any
			_ = json.Unmarshal(raw, &list)
			e := formatError(CapabilityReview, fmt.Sprintf("AI returned suggestions with invalid item structure for review (%s).", section), text, list)
			e.ReceivedKey = "received_suggestions"
			return nil, e
		}
		resp.Suggestions = append(resp.Suggestions, sug)
	}
	return resp, nil
}

// reviewItem requires string type and suggestion; original and explanation may be absent.
func reviewItem(item map[string]json.RawMessage) (ReviewSuggestion, bool) {
	var sug ReviewSuggestion
	fields := []struct {
		key      string
		dst      *string
		required bool
	}{
		{"type", &sug.Type, true},
		{"original", &sug.Original, false},
		{"suggestion", &sug.Suggestion, true},
		{"explanation", &sug.Explanation, false},
	}
	for _, f := range fields {
		raw, ok := item[f.key]
		if !ok {
			if f.required {
				return sug, false
			}
			continue
		}
		if bytesIsNull(raw) || json.Unmarshal(raw, f.dst) != nil {
			return sug, false
		}
	}
	return sug, true
}

func bytesIsNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
