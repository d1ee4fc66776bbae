package assistclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonathan/resume-builder/internal/assist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestClient_EnhanceExperience(t *testing.T) {
	var got map[string]any
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/enhance-experience": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(w, http.StatusOK, `{"enhancedSummary": "• Led migrations"}`)
		},
	})

	resp, err := client.EnhanceExperience(context.Background(), assist.ExperienceRequest{
		JobTitle: "SRE", Company: "Acme", Summary: "did migrations",
	})
	require.NoError(t, err)

	assert.Equal(t, "• Led migrations", resp.EnhancedSummary)
	assert.Equal(t, map[string]any{"jobTitle": "SRE", "company": "Acme", "summary": "did migrations"}, got)
}

func TestClient_EnhanceProject_SendsTechAsString(t *testing.T) {
	var got map[string]any
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/enhance-project": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(w, http.StatusOK, `{"enhancedDescription": "• Built"}`)
		},
	})

	resp, err := client.EnhanceProject(context.Background(), assist.ProjectRequest{Tech: "Go, gRPC", Description: "x"})
	require.NoError(t, err)
	assert.Equal(t, "• Built", resp.EnhancedDescription)
	assert.Equal(t, "Go, gRPC", got["tech"])
}

func TestClient_ServiceError(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/suggest-skills": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"error": "Job title is required to suggest relevant skills"}`)
		},
		"POST /api/review-section": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	})

	_, err := client.SuggestSkills(context.Background(), assist.SkillsRequest{})
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.Status)
	assert.Equal(t, "Job title is required to suggest relevant skills", svcErr.Message)

	_, err = client.ReviewSection(context.Background(), assist.ReviewRequest{Text: "x"})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadGateway, svcErr.Status)
	assert.Contains(t, svcErr.Message, "502")
}

func TestClient_MissingFields(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{}`)
		},
	})
	ctx := context.Background()

	_, err := client.GenerateSummary(ctx, assist.SummaryRequest{})
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = client.EnhanceExperience(ctx, assist.ExperienceRequest{Summary: "x"})
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = client.EnhanceProject(ctx, assist.ProjectRequest{Description: "x"})
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = client.SuggestSkills(ctx, assist.SkillsRequest{JobTitle: "x"})
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = client.ReviewSection(ctx, assist.ReviewRequest{Text: "x"})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestClient_GenerateSummaryAndEmptyLists(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/generate-summary": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"refinedSummary": "Sharp", "suggestions": [{"level": "Mid-Level", "text": "m"}, {"level": "Junior-Level", "text": "j"}]}`)
		},
		"POST /api/review-section": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"suggestions": []}`)
		},
	})

	summary, err := client.GenerateSummary(context.Background(), assist.SummaryRequest{JobTitle: "Dev"})
	require.NoError(t, err)
	assert.Equal(t, "Sharp", summary.RefinedSummary)
	assert.Len(t, summary.Suggestions, 2)

	review, err := client.ReviewSection(context.Background(), assist.ReviewRequest{Text: "fine"})
	require.NoError(t, err)
	assert.Empty(t, review.Suggestions)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/enhance-experience": func(w http.ResponseWriter, _ *http.Request) {
			<-release
			writeJSON(w, http.StatusOK, `{"enhancedSummary": "late"}`)
		},
	})
	defer close(release)
	client.SetTimeout(50 * time.Millisecond)

	_, err := client.EnhanceExperience(context.Background(), assist.ExperienceRequest{Summary: "x"})
	require.Error(t, err)
	var svcErr *ServiceError
	assert.NotErrorAs(t, err, &svcErr)
}
