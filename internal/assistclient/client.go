// Package assistclient calls the writing assistant over HTTP and applies its
// results to a document store.
package assistclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonathan/resume-builder/internal/assist"
)

// ErrMissingField reports a successful response that lacked the expected field.
// Callers treat it as a soft failure and leave the document unchanged.
var ErrMissingField = errors.New("response missing expected field")

// ServiceError is a non-2xx answer from the assistant service
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("assist service returned %d: %s", e.Status, e.Message)
}

// Assistant is the set of writing-assistant operations. Both Client and
// *assist.Service implement it.
type Assistant interface {
	GenerateSummary(ctx context.Context, req assist.SummaryRequest) (*assist.SummaryResponse, error)
	EnhanceExperience(ctx context.Context, req assist.ExperienceRequest) (*assist.ExperienceResponse, error)
	EnhanceProject(ctx context.Context, req assist.ProjectRequest) (*assist.ProjectResponse, error)
	SuggestSkills(ctx context.Context, req assist.SkillsRequest) (*assist.SkillsResponse, error)
	ReviewSection(ctx context.Context, req assist.ReviewRequest) (*assist.ReviewResponse, error)
}

var (
	_ Assistant = (*Client)(nil)
	_ Assistant = (*assist.Service)(nil)
)

// Client talks to the /api routes of a resume-builder server
type Client struct {
	http *resty.Client
}

// DefaultTimeout matches the slowest model tier comfortably.
const DefaultTimeout = 90 * time.Second

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(DefaultTimeout)
	return &Client{http: c}
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) *Client {
	c.http.SetTimeout(d)
	return c
}

// GenerateSummary calls POST /api/generate-summary.
func (c *Client) GenerateSummary(ctx context.Context, req assist.SummaryRequest) (*assist.SummaryResponse, error) {
	var raw struct {
		RefinedSummary *string                    `json:"refinedSummary"`
		Suggestions    []assist.SummarySuggestion `json:"suggestions"`
	}
	if err := c.post(ctx, "/api/generate-summary", req, &raw); err != nil {
		return nil, err
	}
	if raw.RefinedSummary == nil {
		return nil, fmt.Errorf("refinedSummary: %w", ErrMissingField)
	}
	return &assist.SummaryResponse{RefinedSummary: *raw.RefinedSummary, Suggestions: raw.Suggestions}, nil
}

// EnhanceExperience calls POST /api/enhance-experience.
func (c *Client) EnhanceExperience(ctx context.Context, req assist.ExperienceRequest) (*assist.ExperienceResponse, error) {
	var raw struct {
		EnhancedSummary *string `json:"enhancedSummary"`
	}
	if err := c.post(ctx, "/api/enhance-experience", req, &raw); err != nil {
		return nil, err
	}
	if raw.EnhancedSummary == nil {
		return nil, fmt.Errorf("enhancedSummary: %w", ErrMissingField)
	}
	return &assist.ExperienceResponse{EnhancedSummary: *raw.EnhancedSummary}, nil
}

// EnhanceProject calls POST /api/enhance-project.
func (c *Client) EnhanceProject(ctx context.Context, req assist.ProjectRequest) (*assist.ProjectResponse, error) {
	var raw struct {
		EnhancedDescription *string `json:"enhancedDescription"`
	}
	if err := c.post(ctx, "/api/enhance-project", req, &raw); err != nil {
		return nil, err
	}
	if raw.EnhancedDescription == nil {
		return nil, fmt.Errorf("enhancedDescription: %w", ErrMissingField)
	}
	return &assist.ProjectResponse{EnhancedDescription: *raw.EnhancedDescription}, nil
}

// SuggestSkills calls POST /api/suggest-skills.
func (c *Client) SuggestSkills(ctx context.Context, req assist.SkillsRequest) (*assist.SkillsResponse, error) {
	var raw struct {
		SuggestedSkills []string `json:"suggestedSkills"`
	}
	if err := c.post(ctx, "/api/suggest-skills", req, &raw); err != nil {
		return nil, err
	}
	if raw.SuggestedSkills == nil {
		return nil, fmt.Errorf("suggestedSkills: %w", ErrMissingField)
	}
	return &assist.SkillsResponse{SuggestedSkills: raw.SuggestedSkills}, nil
}

// ReviewSection calls POST /api/review-section.
func (c *Client) ReviewSection(ctx context.Context, req assist.ReviewRequest) (*assist.ReviewResponse, error) {
	var raw struct {
		Suggestions []assist.ReviewSuggestion `json:"suggestions"`
	}
	if err := c.post(ctx, "/api/review-section", req, &raw); err != nil {
		return nil, err
	}
	if raw.Suggestions == nil {
		return nil, fmt.Errorf("suggestions: %w", ErrMissingField)
	}
	return &assist.ReviewResponse{Suggestions: raw.Suggestions}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}

	if resp.IsError() {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := resp.Status()
		if json.Unmarshal(resp.Body(), &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		return &ServiceError{Status: resp.StatusCode(), Message: msg}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
