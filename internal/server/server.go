package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jonathan/resume-builder/internal/assist"
	"github.com/jonathan/resume-builder/internal/assistclient"
	"github.com/jonathan/resume-builder/internal/format"
	"github.com/jonathan/resume-builder/internal/metrics"
	"github.com/jonathan/resume-builder/internal/repository"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// DefaultShutdownGrace bounds graceful shutdown when Config leaves it unset.
const DefaultShutdownGrace = 10 * time.Second

// pingInterval spaces keep-alive comments on idle event streams.
const pingInterval = 25 * time.Second

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	MaxSessions    int
	ThemeColor     string
	AITimeout      time.Duration
	ShutdownGrace  time.Duration
}

// Assistant is the writing assistant behind the /api routes. *assist.Service implements it.
type Assistant interface {
	assistclient.Assistant
	ReviewDocument(ctx context.Context, doc *types.ResumeDocument) (*assist.DocumentReview, error)
}

var _ Assistant = (*assist.Service)(nil)

// Deps are the collaborators a Server is built from. Only Assistant is required.
type Deps struct {
	Logger      zerolog.Logger
	Assistant   Assistant
	Repository  repository.Repository
	Metrics     *metrics.Collector
	Gatherer    prometheus.Gatherer
	RateLimiter *ratelimit.Limiter
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	cfg         Config
	log         zerolog.Logger
	assistant   Assistant
	repo        repository.Repository
	metrics     *metrics.Collector
	gatherer    prometheus.Gatherer
	rateLimiter *ratelimit.Limiter
	sessions    *Registry
	taxonomy    format.Taxonomy
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Assistant == nil {
		return nil, fmt.Errorf("server: an assistant is required")
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = DefaultShutdownGrace
	}

	s := &Server{
		cfg:         cfg,
		log:         deps.Logger,
		assistant:   deps.Assistant,
		repo:        deps.Repository,
		metrics:     deps.Metrics,
		gatherer:    deps.Gatherer,
		rateLimiter: deps.RateLimiter,
		taxonomy:    format.DefaultTaxonomy(),
	}
	if s.repo == nil {
		s.repo = repository.NewMemoryRepository()
	}
	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		s.metrics = metrics.NewCollector(reg)
		s.gatherer = reg
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}

	s.sessions = NewRegistry(SessionFactory{
		StoreOptions: []store.Option{
			store.WithDefaultThemeColor(cfg.ThemeColor),
			store.WithObserver(s.metrics.RecordMutation),
		},
		Assistant: s.assistant,
		AITimeout: cfg.AITimeout,
		Logger:    s.log,
	}, cfg.MaxSessions, s.metrics.SetSessions)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler(s.gatherer))

	// Writing assistant
	mux.HandleFunc("POST /api/generate-summary", assistRoute(s, s.assistant.GenerateSummary))
	mux.HandleFunc("POST /api/enhance-experience", assistRoute(s, s.assistant.EnhanceExperience))
	mux.HandleFunc("POST /api/enhance-project", assistRoute(s, s.assistant.EnhanceProject))
	mux.HandleFunc("POST /api/suggest-skills", assistRoute(s, s.assistant.SuggestSkills))
	mux.HandleFunc("POST /api/review-section", assistRoute(s, s.assistant.ReviewSection))
	mux.HandleFunc("POST /api/review-document", s.handleReviewDocument)

	// Document sessions
	mux.HandleFunc("POST /documents", s.handleCreateDocument)
	mux.HandleFunc("GET /documents/{id}", s.handleGetDocument)
	mux.HandleFunc("DELETE /documents/{id}", s.handleDeleteDocument)
	mux.HandleFunc("PUT /documents/{id}/sections/{section}", s.handleSetSection)
	mux.HandleFunc("PUT /documents/{id}/personal/{field}", s.handleSetPersonalField)
	mux.HandleFunc("POST /documents/{id}/lists/{section}", s.handleAddListItem)
	mux.HandleFunc("PATCH /documents/{id}/lists/{section}/{itemId}", s.handleUpdateListItem)
	mux.HandleFunc("DELETE /documents/{id}/lists/{section}/{itemId}", s.handleRemoveListItem)
	mux.HandleFunc("POST /documents/{id}/load", s.handleLoadDocument)
	mux.HandleFunc("POST /documents/{id}/reset", s.handleResetDocument)
	mux.HandleFunc("PUT /documents/{id}/theme", s.handleSetTheme)
	mux.HandleFunc("GET /documents/{id}/preview", s.handlePreview)
	mux.HandleFunc("GET /documents/{id}/preview.html", s.handlePreviewHTML)
	mux.HandleFunc("GET /documents/{id}/events", s.handleEvents)

	// Background enhance calls
	mux.HandleFunc("POST /documents/{id}/experience/{itemId}/enhance", s.handleEnhanceExperience)
	mux.HandleFunc("POST /documents/{id}/projects/{itemId}/enhance", s.handleEnhanceProject)
	mux.HandleFunc("POST /documents/{id}/summary/generate", s.handleGenerateSummary)
	mux.HandleFunc("POST /documents/{id}/review", s.handleReviewSession)

	// Persistence, sharing and export
	mux.HandleFunc("POST /documents/{id}/save", s.handleSaveDocument)
	mux.HandleFunc("POST /resumes/{resumeId}/open", s.handleOpenResume)
	mux.HandleFunc("POST /documents/{id}/share", s.handleNotImplemented("sharing"))
	mux.HandleFunc("GET /documents/{id}/pdf", s.handleNotImplemented("PDF download"))

	s.handler = middleware.Chain(mux,
		middleware.Recovery(s.log),
		middleware.Metrics(s.metrics),
		s.withRateLimit,
		middleware.Logging(s.log),
		middleware.CORS(cfg.AllowedOrigins),
	)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Long enough for one assistant call; event streams lift it per request.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.httpServer.RegisterOnShutdown(s.sessions.Close)

	return s, nil
}

// Handler returns the full middleware-wrapped API handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Sessions returns the live session registry.
func (s *Server) Sessions() *Registry {
	return s.sessions
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info().Msg("server stopped")
	return nil
}

// Close ends every session and stops the rate limiter cleanup goroutine.
func (s *Server) Close() {
	s.sessions.Close()
	s.rateLimiter.Stop()
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to its status and error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	s.jsonResponse(w, status, errorBody(err))
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := max(1, int(info.RetryAfter.Round(time.Second).Seconds()))
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.log.Warn().
		Str("client", s.extractClientID(r)).
		Str("path", r.URL.Path).
		Int("limit", info.Limit).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
