package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// isJSONRequest reports whether the request declares a JSON body.
func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}

// readBody reads the capped request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrValidation{Field: "body", Message: "request body too large"}
		}
		return nil, err
	}
	return body, nil
}

// decodeJSON reads the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// decodeObject reads a JSON object body.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	var obj map[string]any
	if err := decodeJSON(w, r, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, &ErrValidation{Field: "body", Message: "must be a JSON object"}
	}
	return obj, nil
}

// session looks up the {id} session, writing a 404 when it is missing.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := r.PathValue("id")
	session := s.sessions.Get(id)
	if session == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "document", ID: id})
		return nil, false
	}
	return session, true
}

// handleNotImplemented answers routes for features that do not exist yet.
func (s *Server) handleNotImplemented(feature string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.session(w, r); !ok {
			return
		}
		s.errorResponse(w, http.StatusNotImplemented, feature+" is not implemented")
	}
}
