package server

import (
	"net/http"

	"github.com/google/uuid"
)

// SaveResponse acknowledges a saved document
type SaveResponse struct {
	Ack      bool      `json:"ack"`
	ResumeID uuid.UUID `json:"resumeId"`
}

// handleSaveDocument stores a copy of the session's document.
func (s *Server) handleSaveDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	snap := session.Store.Snapshot()
	id, err := s.repo.Save(r.Context(), snap.Document, snap.Settings())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info().Str("session", session.ID).Str("resume_id", id.String()).Msg("resume saved")
	s.jsonResponse(w, http.StatusOK, SaveResponse{Ack: true, ResumeID: id})
}

// handleOpenResume starts a new session from a saved resume.
func (s *Server) handleOpenResume(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("resumeId")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "resumeId", Message: "must be a UUID"})
		return
	}

	saved, err := s.repo.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if saved == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "resume", ID: raw})
		return
	}

	session, err := s.sessions.Create()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := session.Store.LoadDocument(saved.Content); err != nil {
		s.sessions.Delete(session.ID)
		s.writeError(w, r, err)
		return
	}
	if saved.Settings.ThemeColor != "" {
		session.Store.SetThemeColor(saved.Settings.ThemeColor)
	}
	s.jsonResponse(w, http.StatusCreated, DocumentResponse{ID: session.ID, Snapshot: session.Store.Snapshot()})
}
