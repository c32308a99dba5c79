package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// The store API mirrors the routes of the unit store service, so clients
// written against that service can use this server as their store. Writes go
// through the engine and therefore update the graph.

type fileResponse struct {
	Content string `json:"content"`
}

type fileWriteRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type fileRenameRequest struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

func (s *Server) mountStoreAPI(r chi.Router) {
	r.Get("/files", s.ListUnits)
	r.Get("/file/{id}", s.GetFile)
	r.Post("/file", s.WriteFile)
	r.Delete("/file/{id}", s.DeleteFile)
	r.Post("/rename", s.MoveFile)
}

// GetFile handles the GET /file/{id} request.
func (s *Server) GetFile(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Engine.ReadUnit(r.Context(), urlParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fileResponse{Content: doc.Content})
}

// WriteFile handles the POST /file request.
func (s *Server) WriteFile(w http.ResponseWriter, r *http.Request) {
	var body fileWriteRequest
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if err := s.Engine.SaveUnit(r.Context(), body.Filename, body.Content); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteFile handles the DELETE /file/{id} request. Store clients confirm
// on their side, so no confirm parameter is required here.
func (s *Server) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.DeleteUnit(r.Context(), urlParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MoveFile handles the POST /rename request. It is a plain store rename;
// references are not repaired.
func (s *Server) MoveFile(w http.ResponseWriter, r *http.Request) {
	var body fileRenameRequest
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if err := s.Engine.MoveUnit(r.Context(), body.OldName, body.NewName); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
