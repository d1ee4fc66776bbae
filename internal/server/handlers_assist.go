package server

import (
	"context"
	"net/http"

	"github.com/jonathan/resume-builder/internal/assistclient"
	"github.com/jonathan/resume-builder/internal/document"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// assistRoute adapts one assistant call to a JSON-in, JSON-out handler.
func assistRoute[Req, Resp any](s *Server, call func(context.Context, Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isJSONRequest(r) {
			s.errorResponse(w, http.StatusBadRequest, "Request must be JSON")
			return
		}
		var req Req
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		resp, err := call(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, resp)
	}
}

// handleReviewDocument proofreads a whole document sent in the body.
func (s *Server) handleReviewDocument(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		s.errorResponse(w, http.StatusBadRequest, "Request must be JSON")
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := schemas.ValidateDocumentJSON(body); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := document.Load(body, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.review(w, r, &doc)
}

// handleReviewSession proofreads the session's current document.
func (s *Server) handleReviewSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	doc := session.Store.Snapshot().Document
	s.review(w, r, &doc)
}

func (s *Server) review(w http.ResponseWriter, r *http.Request, doc *types.ResumeDocument) {
	review, err := s.assistant.ReviewDocument(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, review)
}

// handleEnhanceExperience starts a background rewrite of one experience summary.
func (s *Server) handleEnhanceExperience(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	itemID := r.PathValue("itemId")
	entry, found := document.Find(session.Store.Snapshot().Document.Experience, itemID)
	if !found {
		s.writeError(w, r, &ErrNotFound{Resource: "experience entry", ID: itemID})
		return
	}
	s.dispatch(w, r, session, assistclient.ItemKey(types.SectionExperience, itemID), assistclient.ExperienceTask(s.assistant, entry))
}

// handleEnhanceProject starts a background rewrite of one project description.
func (s *Server) handleEnhanceProject(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	itemID := r.PathValue("itemId")
	entry, found := document.Find(session.Store.Snapshot().Document.Projects, itemID)
	if !found {
		s.writeError(w, r, &ErrNotFound{Resource: "project", ID: itemID})
		return
	}
	s.dispatch(w, r, session, assistclient.ItemKey(types.SectionProjects, itemID), assistclient.ProjectTask(s.assistant, entry))
}

// handleGenerateSummary starts a background refinement of the summary for the
// personal job title.
func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	doc := session.Store.Snapshot().Document
	s.dispatch(w, r, session, assistclient.SummaryKey, assistclient.SummaryTask(s.assistant, doc.Personal.JobTitle, doc.Summary))
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, session *Session, key string, task assistclient.Task) {
	if err := session.Dispatcher.TryStart(key, task); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, map[string]string{"key": key, "status": "started"})
}
