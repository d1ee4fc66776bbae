package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/assist"
	"github.com/jonathan/resume-builder/internal/llm/llmtest"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

const summaryReply = `{
	"refinedSummary": "Backend engineer shipping reliable APIs.",
	"suggestions": [
		{"level": "Senior-Level", "text": "Senior text"},
		{"level": "Junior-Level", "text": "Junior text"}
	]
}`

type testEnv struct {
	server  *Server
	handler http.Handler
	llm     *llmtest.Client
}

func newTestEnv(t *testing.T, fake *llmtest.Client, opts ...func(*Config, *Deps)) *testEnv {
	t.Helper()
	if fake == nil {
		fake = &llmtest.Client{}
	}
	cfg := Config{
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxSessions:    10,
		ThemeColor:     "#A78BFA",
		AITimeout:      5 * time.Second,
	}
	deps := Deps{Logger: zerolog.Nop(), Assistant: assist.NewService(fake)}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	s, err := New(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return &testEnv{server: s, handler: s.Handler(), llm: fake}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNew_RequiresAssistant(t *testing.T) {
	_, err := New(Config{}, Deps{})
	assert.ErrorContains(t, err, "assistant is required")
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodPost, "/documents", "")

	w := env.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(1), resp["sessions"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	created := decodeBody[DocumentResponse](t, env.do(http.MethodPost, "/documents", ""))
	env.do(http.MethodPost, "/documents/"+created.ID+"/lists/skills", `{"name": "Go"}`)

	w := env.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `resume_builder_http_requests_total{method="POST",status="201"} 2`)
	assert.Contains(t, body, `resume_builder_store_mutations_total{operation="add_list_item"} 1`)
	assert.Contains(t, body, "resume_builder_sessions_active 1")
}

func TestAssistRoutes(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		reply      string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "generate summary",
			path:       "/api/generate-summary",
			reply:      summaryReply,
			body:       `{"jobTitle": "Backend Engineer"}`,
			wantStatus: http.StatusOK,
			wantBody: `{"refinedSummary": "Backend engineer shipping reliable APIs.", "suggestions": [
				{"level": "Senior-Level", "text": "Senior text"}, {"level": "Junior-Level", "text": "Junior text"}]}`,
		},
		{
			name:       "enhance experience",
			path:       "/api/enhance-experience",
			reply:      `{"enhancedSummary": "Built billing\nLed migration"}`,
			body:       `{"jobTitle": "Engineer", "company": "Acme", "summary": "did things"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"enhancedSummary": "• Built billing\n• Led migration"}`,
		},
		{
			name:       "enhance project with tech list",
			path:       "/api/enhance-project",
			reply:      `{"enhancedDescription": "• Realtime tracker"}`,
			body:       `{"title": "Tracker", "tech": ["Go", "Redis"], "description": "a tracker"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"enhancedDescription": "• Realtime tracker"}`,
		},
		{
			name:       "suggest skills filters existing",
			path:       "/api/suggest-skills",
			reply:      `{"suggestedSkills": ["Go", " Kubernetes ", ""]}`,
			body:       `{"jobTitle": "SRE", "skills": ["go"]}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"suggestedSkills": ["Kubernetes"]}`,
		},
		{
			name:       "review section",
			path:       "/api/review-section",
			reply:      `{"suggestions": [{"type": "Grammar", "original": "teh", "suggestion": "the"}]}`,
			body:       `{"sectionName": "Summary", "text": "teh summary"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"suggestions": [{"type": "Grammar", "original": "teh", "suggestion": "the"}]}`,
		},
		{
			name:       "missing experience summary",
			path:       "/api/enhance-experience",
			body:       `{"jobTitle": "Engineer"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error": "No experience summary provided"}`,
		},
		{
			name:       "missing job title",
			path:       "/api/suggest-skills",
			body:       `{"skills": []}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error": "Job title is required to suggest relevant skills"}`,
		},
		{
			name:       "model returns prose",
			path:       "/api/enhance-experience",
			reply:      "Here are your bullets!",
			body:       `{"summary": "did things"}`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error": "AI failed to return valid JSON for experience.", "raw_ai_response": "Here are your bullets!"}`,
		},
		{
			name:       "model returns wrong shape",
			path:       "/api/generate-summary",
			reply:      `{"refinedSummary": "x"}`,
			body:       `{}`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error": "AI response missing required fields ('refinedSummary', 'suggestions').", "received_structure": {"refinedSummary": "x"}}`,
		},
		{
			name:       "malformed body",
			path:       "/api/review-section",
			body:       `{"text": `,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &llmtest.Client{Response: tt.reply})

			w := env.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestAssistRoutes_RequireJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, path := range []string{"/api/generate-summary", "/api/enhance-experience", "/api/enhance-project",
		"/api/suggest-skills", "/api/review-section", "/api/review-document"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.JSONEq(t, `{"error": "Request must be JSON"}`, w.Body.String(), path)
	}
	assert.Empty(t, env.llm.Calls())
}

func TestAssistRoutes_GenerationError(t *testing.T) {
	env := newTestEnv(t, &llmtest.Client{Err: assert.AnError})

	w := env.do(http.MethodPost, "/api/enhance-project", `{"description": "x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeBody[map[string]string](t, w)
	assert.True(t, strings.HasPrefix(resp["error"], "An unexpected error occurred while enhancing the project: "), resp["error"])
}

func TestReviewDocument(t *testing.T) {
	fake := &llmtest.Client{Response: `{"suggestions": [{"type": "Clarity", "suggestion": "Be specific"}]}`}
	env := newTestEnv(t, fake)

	w := env.do(http.MethodPost, "/api/review-document", `{
		"summary": "I build things.",
		"experience": [{"id": "e1", "title": "Engineer", "company": "Acme", "summary": "Did work"}],
		"projects": [{"id": "p1", "title": "Tracker", "description": ""}]
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	review := decodeBody[assist.DocumentReview](t, w)
	require.Len(t, review.Sections, 2)
	assert.Equal(t, "Summary", review.Sections[0].SectionName)
	assert.Equal(t, "Experience: Engineer at Acme", review.Sections[1].SectionName)
	assert.Equal(t, "e1", review.Sections[1].ItemID)
	assert.Equal(t, "Be specific", review.Sections[1].Suggestions[0].Suggestion)
	assert.Len(t, fake.Calls(), 2)

	w = env.do(http.MethodPost, "/api/review-document", `{"summary": 12}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[map[string]any](t, w), "details")
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, &llmtest.Client{Response: summaryReply}, func(_ *Config, d *Deps) {
		d.RateLimiter = ratelimit.NewLimiter(&ratelimit.Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			EndpointConfigs: ratelimit.DefaultEndpointConfigs(6),
		})
	})

	w := env.do(http.MethodPost, "/api/generate-summary", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6", w.Header().Get("X-RateLimit-Limit"))

	w = env.do(http.MethodPost, "/api/generate-summary", `{}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, "rate_limit_exceeded", resp["error"])

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-summary", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	s, err := New(Config{Port: 0, MaxSessions: 1, ShutdownGrace: time.Second}, Deps{
		Logger:    zerolog.Nop(),
		Assistant: assist.NewService(&llmtest.Client{}),
	})
	require.NoError(t, err)
	_, err = s.Sessions().Create()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Zero(t, s.Sessions().Len())
}
