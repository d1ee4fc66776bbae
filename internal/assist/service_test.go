package assist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/llm/llmtest"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFake(response string) *llmtest.Client {
	return &llmtest.Client{Response: response}
}

func TestGenerateSummary(t *testing.T) {
	fake := newFake("```json\n" + `{
		"refinedSummary": "Backend engineer with 6 years building APIs.",
		"suggestions": [
			{"level": "Mid-Level", "text": "Mid text"},
			{"level": "Junior-Level", "text": "Junior text"}
		]
	}` + "\n```")
	svc := NewService(fake)

	resp, err := svc.GenerateSummary(context.Background(), SummaryRequest{JobTitle: "Backend Engineer"})
	require.NoError(t, err)

	assert.Equal(t, "Backend engineer with 6 years building APIs.", resp.RefinedSummary)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "Mid-Level", resp.Suggestions[0].Level)
	assert.Equal(t, "Junior text", resp.Suggestions[1].Text)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].JSON)
	assert.Equal(t, llm.TierStandard, calls[0].Tier)
	assert.Contains(t, calls[0].Prompt, `Target Job Title: "Backend Engineer"`)
	assert.Contains(t, calls[0].Prompt, NoSummaryDraft)
}

func TestGenerateSummary_DefaultsWithoutJobTitle(t *testing.T) {
	fake := newFake(`{"refinedSummary": "x", "suggestions": [{"level": "a", "text": "b"}, {"level": "c", "text": "d"}]}`)
	_, err := NewService(fake).GenerateSummary(context.Background(), SummaryRequest{CurrentSummary: "I build things"})
	require.NoError(t, err)

	prompt := fake.Calls()[0].Prompt
	assert.Contains(t, prompt, `Target Job Title: "Not Provided"`)
	assert.Contains(t, prompt, `tailor it towards the "target job"`)
	assert.Contains(t, prompt, "I build things")
}

func TestGenerateSummary_BadResponses(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantDetail string
		wantRaw    bool
	}{
		{"not json", "Sorry, I can't do that.", "AI failed to return valid JSON.", true},
		{"missing fields", `{"refinedSummary": "x"}`, "AI response missing required fields ('refinedSummary', 'suggestions').", false},
		{"one suggestion", `{"refinedSummary": "x", "suggestions": [{"level": "a", "text": "b"}]}`, "AI response 'suggestions' field is not a list of two items.", false},
		{"suggestions not list", `{"refinedSummary": "x", "suggestions": "none"}`, "AI response 'suggestions' field is not a list of two items.", false},
		{"suggestion missing text", `{"refinedSummary": "x", "suggestions": [{"level": "a"}, {"level": "c", "text": "d"}]}`, "AI returned data in an unexpected format.", false},
		{"summary not string", `{"refinedSummary": 3, "suggestions": [{"level": "a", "text": "b"}, {"level": "c", "text": "d"}]}`, "AI returned data in an unexpected format.", false},
		{"array", `["x"]`, "AI returned data in an unexpected format.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(newFake(tt.response)).GenerateSummary(context.Background(), SummaryRequest{JobTitle: "Dev"})

			var formatErr *ResponseFormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, tt.wantDetail, formatErr.Detail)
			assert.Equal(t, CapabilitySummary, formatErr.Capability)
			if tt.wantRaw {
				assert.NotEmpty(t, formatErr.Raw)
				assert.Nil(t, formatErr.Received)
			} else {
				assert.Empty(t, formatErr.Raw)
				assert.NotNil(t, formatErr.Received)
			}
		})
	}
}

func TestResponseFormatError_RawResponseTruncated(t *testing.T) {
	raw := strings.Repeat("é", MaxRawResponse+50)
	_, err := NewService(newFake(raw)).GenerateSummary(context.Background(), SummaryRequest{})

	var formatErr *ResponseFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Len(t, []rune(formatErr.RawResponse()), MaxRawResponse)
}

func TestEnhanceExperience(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"already bulleted", `{"enhancedSummary": "• Led a team\n• Cut costs by 20%"}`, "• Led a team\n• Cut costs by 20%"},
		{"lines without bullets", `{"enhancedSummary": "Led a team\n\n  Cut costs by 20%  "}`, "• Led a team\n• Cut costs by 20%"},
		{"empty allowed", `{"enhancedSummary": ""}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFake(tt.response)
			resp, err := NewService(fake).EnhanceExperience(context.Background(), ExperienceRequest{
				JobTitle: "Engineer",
				Summary:  "did stuff",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.EnhancedSummary)
			assert.Contains(t, fake.Calls()[0].Prompt, `Company: "Not Provided"`)
		})
	}
}

func TestEnhanceExperience_RequiresSummary(t *testing.T) {
	fake := newFake("{}")
	_, err := NewService(fake).EnhanceExperience(context.Background(), ExperienceRequest{JobTitle: "Engineer"})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "No experience summary provided", validationErr.Error())
	assert.Equal(t, "Summary", validationErr.Field)
	assert.Empty(t, fake.Calls())
}

func TestEnhanceExperience_BadResponses(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantDetail string
	}{
		{"not json", "nope", "AI failed to return valid JSON for experience."},
		{"missing field", `{"bullets": "• x"}`, "AI response missing required 'enhancedSummary' field."},
		{"wrong type", `{"enhancedSummary": ["• x"]}`, "AI returned data in an unexpected format for experience."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(newFake(tt.response)).EnhanceExperience(context.Background(), ExperienceRequest{Summary: "x"})
			var formatErr *ResponseFormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, tt.wantDetail, formatErr.Detail)
		})
	}
}

func TestEnhanceProject(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantTech string
		wantName string
	}{
		{"tech string", `{"title": "Tracker", "tech": "Go, React", "description": "an app"}`, "Go, React", "Tracker"},
		{"tech list", `{"title": "Tracker", "tech": ["Go", "React"], "description": "an app"}`, "Go, React", "Tracker"},
		{"tech missing", `{"description": "an app"}`, TechNotSpecified, UnnamedProject},
		{"tech null", `{"tech": null, "description": "an app"}`, TechNotSpecified, UnnamedProject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ProjectRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			fake := newFake(`{"enhancedDescription": "Built it"}`)
			resp, err := NewService(fake).EnhanceProject(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, "• Built it", resp.EnhancedDescription)
			prompt := fake.Calls()[0].Prompt
			assert.Contains(t, prompt, `Technologies Used: "`+tt.wantTech+`"`)
			assert.Contains(t, prompt, `Project Title: "`+tt.wantName+`"`)
		})
	}
}

func TestTech_RejectsOtherShapes(t *testing.T) {
	var req ProjectRequest
	assert.Error(t, json.Unmarshal([]byte(`{"tech": 42}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"tech": [1, 2]}`), &req))
}

func TestEnhanceProject_RequiresDescription(t *testing.T) {
	_, err := NewService(newFake("{}")).EnhanceProject(context.Background(), ProjectRequest{Title: "X"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "No project description provided", validationErr.Message)
}

func TestSuggestSkills(t *testing.T) {
	fake := newFake(`{"suggestedSkills": ["  Kubernetes ", "go", "", "Terraform", "DOCKER"]}`)
	resp, err := NewService(fake).SuggestSkills(context.Background(), SkillsRequest{
		JobTitle: "Platform Engineer",
		Skills:   SkillNames{"Go", "Docker"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Kubernetes", "Terraform"}, resp.SuggestedSkills)
	assert.Contains(t, fake.Calls()[0].Prompt, "[Go, Docker]")
}

func TestSuggestSkills_SkillsShapeTolerated(t *testing.T) {
	for _, body := range []string{
		`{"jobTitle": "Dev", "skills": "Go"}`,
		`{"jobTitle": "Dev", "skills": ["Go", 3]}`,
		`{"jobTitle": "Dev"}`,
	} {
		var req SkillsRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		assert.Empty(t, req.Skills, body)

		fake := newFake(`{"suggestedSkills": ["Go"]}`)
		resp, err := NewService(fake).SuggestSkills(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, []string{"Go"}, resp.SuggestedSkills)
		assert.Contains(t, fake.Calls()[0].Prompt, "["+NoSkillsProvided+"]")
	}
}

func TestSuggestSkills_Errors(t *testing.T) {
	_, err := NewService(newFake("{}")).SuggestSkills(context.Background(), SkillsRequest{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Job title is required to suggest relevant skills", validationErr.Message)

	tests := []struct {
		response   string
		wantDetail string
	}{
		{"garbage", "AI failed to return valid JSON for skills."},
		{`{"skills": []}`, "AI response missing or invalid 'suggestedSkills' array."},
		{`{"suggestedSkills": "Go"}`, "AI response missing or invalid 'suggestedSkills' array."},
		{`{"suggestedSkills": ["Go", 1]}`, "AI returned data in an unexpected format for skills."},
	}
	for _, tt := range tests {
		_, err := NewService(newFake(tt.response)).SuggestSkills(context.Background(), SkillsRequest{JobTitle: "Dev"})
		var formatErr *ResponseFormatError
		require.ErrorAs(t, err, &formatErr, tt.response)
		assert.Equal(t, tt.wantDetail, formatErr.Detail)
	}
}

func TestReviewSection(t *testing.T) {
	fake := newFake(`{"suggestions": [
		{"type": "Tense", "original": "manage", "suggestion": "managed", "explanation": "Use past tense"},
		{"type": "Spelling", "suggestion": "Possible typo"}
	]}`)
	resp, err := NewService(fake).ReviewSection(context.Background(), ReviewRequest{Text: "I manage teh team"})
	require.NoError(t, err)

	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, ReviewSuggestion{Type: "Tense", Original: "manage", Suggestion: "managed", Explanation: "Use past tense"}, resp.Suggestions[0])
	assert.Equal(t, "Possible typo", resp.Suggestions[1].Suggestion)
	assert.Contains(t, fake.Calls()[0].Prompt, `"Unknown Section"`)
}

func TestReviewSection_EmptyTextSkipsModel(t *testing.T) {
	fake := newFake("unused")
	resp, err := NewService(fake).ReviewSection(context.Background(), ReviewRequest{SectionName: "Summary"})
	require.NoError(t, err)

	assert.NotNil(t, resp.Suggestions)
	assert.Empty(t, resp.Suggestions)
	assert.Empty(t, fake.Calls())
}

func TestReviewSection_BadResponses(t *testing.T) {
	tests := []struct {
		response   string
		wantDetail string
	}{
		{"not json", "AI failed to return valid JSON for review (Summary)."},
		{`{"issues": []}`, "AI response missing or invalid 'suggestions' array for review (Summary)."},
		{`{"suggestions": [{"type": "Grammar"}]}`, "AI returned suggestions with invalid item structure for review (Summary)."},
		{`{"suggestions": [{"type": "Grammar", "suggestion": 5}]}`, "AI returned suggestions with invalid item structure for review (Summary)."},
	}
	for _, tt := range tests {
		_, err := NewService(newFake(tt.response)).ReviewSection(context.Background(), ReviewRequest{SectionName: "Summary", Text: "x"})
		var formatErr *ResponseFormatError
		require.ErrorAs(t, err, &formatErr, tt.response)
		assert.Equal(t, tt.wantDetail, formatErr.Detail)
	}
}

func TestResponseFormatError_Body(t *testing.T) {
	_, err := NewService(newFake("nope")).EnhanceProject(context.Background(), ProjectRequest{Description: "x"})
	var formatErr *ResponseFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, map[string]any{
		"error":           "AI failed to return valid JSON for project.",
		"raw_ai_response": "nope",
	}, formatErr.Body())

	_, err = NewService(newFake(`{"suggestions": [{"type": "Grammar"}]}`)).ReviewSection(context.Background(), ReviewRequest{SectionName: "Summary", Text: "x"})
	require.ErrorAs(t, err, &formatErr)
	body := formatErr.Body()
	assert.Equal(t, []any{map[string]any{"type": "Grammar"}}, body["received_suggestions"])
	assert.NotContains(t, body, "received_structure")

	_, err = NewService(newFake(`{"other": 1}`)).SuggestSkills(context.Background(), SkillsRequest{JobTitle: "Dev"})
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, map[string]any{"other": float64(1)}, formatErr.Body()["received_structure"])
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("quota exceeded")
	fake := &llmtest.Client{Err: cause}
	_, err := NewService(fake).SuggestSkills(context.Background(), SkillsRequest{JobTitle: "Dev"})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "An unexpected error occurred while suggesting skills: quota exceeded", err.Error())
	assert.Equal(t, "error", Outcome(err))
}

func TestObserver(t *testing.T) {
	var mu sync.Mutex
	var got []string
	observer := func(capability, outcome string, _ time.Duration) {
		mu.Lock()
		got = append(got, capability+":"+outcome)
		mu.Unlock()
	}
	svc := NewService(newFake(`{"enhancedSummary": "• x"}`), WithObserver(observer), WithTier(llm.TierLite))

	_, _ = svc.EnhanceExperience(context.Background(), ExperienceRequest{Summary: "x"})
	_, _ = svc.EnhanceExperience(context.Background(), ExperienceRequest{})
	_, _ = svc.EnhanceProject(context.Background(), ProjectRequest{Description: "x"})

	assert.Equal(t, []string{
		"enhance-experience:ok",
		"enhance-experience:invalid_request",
		"enhance-project:bad_response",
	}, got)
}

func TestNormalizeBullets(t *testing.T) {
	assert.Equal(t, "• a\n• b", NormalizeBullets("a\nb"))
	assert.Equal(t, "• a\nb", NormalizeBullets("• a\nb"))
	assert.Equal(t, "  ", NormalizeBullets("  "))
}

func TestReviewDocument(t *testing.T) {
	fake := &llmtest.Client{Respond: func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "broken project"):
			return "", errors.New("upstream timeout")
		case strings.Contains(prompt, `"Summary"`):
			return `{"suggestions": [{"type": "Tone", "suggestion": "Be confident"}]}`, nil
		default:
			return `{"suggestions": []}`, nil
		}
	}}
	doc := &types.ResumeDocument{
		Summary: "I help teams.",
		Experience: []types.ExperienceEntry{
			{ID: "e1", Title: "Engineer", Company: "Acme", Summary: "Built APIs"},
			{ID: "e2", Summary: "  "},
		},
		Projects: []types.ProjectEntry{
			{ID: "p1", Title: "Tracker", Description: "broken project"},
		},
	}

	review, err := NewService(fake, WithConcurrency(2)).ReviewDocument(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, review.Sections, 3)

	assert.Equal(t, types.SectionSummary, review.Sections[0].Section)
	assert.Equal(t, "Be confident", review.Sections[0].Suggestions[0].Suggestion)

	assert.Equal(t, "e1", review.Sections[1].ItemID)
	assert.Equal(t, "Experience: Engineer at Acme", review.Sections[1].SectionName)
	assert.Empty(t, review.Sections[1].Error)

	assert.Equal(t, "p1", review.Sections[2].ItemID)
	assert.Contains(t, review.Sections[2].Error, "upstream timeout")
	assert.Empty(t, review.Sections[2].Suggestions)

	assert.Len(t, fake.Calls(), 3)
}

func TestReviewDocument_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(newFake(`{"suggestions": []}`)).ReviewDocument(ctx, &types.ResumeDocument{Summary: "x"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewService(newFake("")).ReviewDocument(context.Background(), nil)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
