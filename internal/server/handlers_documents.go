package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/document"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// DocumentResponse is returned when a session is created or opened
type DocumentResponse struct {
	ID       string         `json:"id"`
	Snapshot store.Snapshot `json:"snapshot"`
}

// handleCreateDocument starts a session holding the default document.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Create()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Debug().Str("session", session.ID).Msg("document session created")
	s.jsonResponse(w, http.StatusCreated, DocumentResponse{ID: session.ID, Snapshot: session.Store.Snapshot()})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, session.Store.Snapshot())
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.sessions.Delete(id) {
		s.writeError(w, r, &ErrNotFound{Resource: "document", ID: id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetSection replaces a whole section with the JSON body.
func (s *Server) handleSetSection(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !json.Valid(body) {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	s.mutate(w, r, session, func(st *store.Store) error {
		return st.SetSection(types.Section(r.PathValue("section")), body)
	})
}

type personalFieldRequest struct {
	Value *string `json:"value"`
}

func (s *Server) handleSetPersonalField(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req personalFieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Value == nil {
		s.writeError(w, r, &ErrValidation{Field: "value", Message: "a string value is required"})
		return
	}
	s.mutate(w, r, session, func(st *store.Store) error {
		return st.SetNestedField(types.SectionPersonal, r.PathValue("field"), *req.Value)
	})
}

// handleAddListItem appends an entry and returns its id. Skills reject a name
// already present, ignoring case.
func (s *Server) handleAddListItem(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	item, err := decodeObject(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	section := types.Section(r.PathValue("section"))
	var check func(types.ResumeDocument) error
	if section == types.SectionSkills {
		name, _ := item["name"].(string)
		check = func(doc types.ResumeDocument) error {
			if strings.TrimSpace(name) != "" && document.HasSkill(doc, name) {
				return &ErrConflict{Message: fmt.Sprintf("skill %q is already listed", strings.TrimSpace(name))}
			}
			return nil
		}
	}

	id, err := session.Store.AddListItemChecked(section, item, check)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": id})
}

// handleUpdateListItem merges the body into an entry. Unknown ids change nothing.
func (s *Server) handleUpdateListItem(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	patch, err := decodeObject(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	err = session.Store.UpdateListItem(types.Section(r.PathValue("section")), r.PathValue("itemId"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveListItem deletes an entry. Unknown ids change nothing.
func (s *Server) handleRemoveListItem(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := session.Store.RemoveListItem(types.Section(r.PathValue("section")), r.PathValue("itemId")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLoadDocument replaces the document with a schema-checked payload.
func (s *Server) handleLoadDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
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
	s.mutate(w, r, session, func(st *store.Store) error {
		return st.LoadDocument(body)
	})
}

func (s *Server) handleResetDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	s.mutate(w, r, session, func(st *store.Store) error {
		st.Reset()
		return nil
	})
}

type themeRequest struct {
	ThemeColor *string `json:"themeColor"`
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ThemeColor == nil {
		s.writeError(w, r, &ErrValidation{Field: "themeColor", Message: "is required"})
		return
	}
	s.mutate(w, r, session, func(st *store.Store) error {
		st.SetThemeColor(*req.ThemeColor)
		return nil
	})
}

// mutate applies fn and answers with the resulting snapshot.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, session *Session, fn func(*store.Store) error) {
	if err := fn(session.Store); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, session.Store.Snapshot())
}

func (s *Server) preview(session *Session) (*rendering.Preview, store.Snapshot) {
	snap := session.Store.Snapshot()
	return rendering.BuildPreview(snap.Document, snap.Settings(), s.taxonomy), snap
}

// handlePreview returns the display tree derived from the current document.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	p, _ := s.preview(session)
	s.jsonResponse(w, http.StatusOK, p)
}

// handlePreviewHTML returns the preview as a standalone sanitized page.
func (s *Server) handlePreviewHTML(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	p, snap := s.preview(session)
	page, err := rendering.RenderHTMLPage(p, snap.Document.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(page)); err != nil {
		s.log.Debug().Err(err).Msg("preview write failed")
	}
}

// handleEvents streams the current snapshot, then one snapshot per committed
// mutation and any background assist failures.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	events, cancel := session.Subscribe()
	defer cancel()

	// Streams outlive the server's write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		s.log.Debug().Err(err).Msg("cannot clear write deadline")
	}
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sse.WriteEvent(EventSnapshot, session.Store.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-events:
			if !open {
				sse.WriteError("document session closed")
				return
			}
			if err := sse.WriteEvent(e.Name, e.Data); err != nil {
				s.log.Debug().Err(err).Str("session", session.ID).Msg("event stream write failed")
				return
			}
		case <-ticker.C:
			if err := sse.WritePing(); err != nil {
				return
			}
		}
	}
}
