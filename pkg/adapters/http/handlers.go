package http

import (
	"net/http"
	"net/url"

	"github.com/aretw0/storygraph/internal/presentation/graph"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/go-chi/chi/v5"
)

type createUnitRequest struct {
	ID string `json:"id"`
}

type saveUnitRequest struct {
	Content string `json:"content"`
}

type renameRequest struct {
	NewID string `json:"new_id"`
}

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Handle string `json:"handle"`
}

type restyleRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type outletResponse struct {
	Handle string          `json:"handle"`
	Target string          `json:"target"`
	Role   domain.EdgeRole `json:"role"`
}

type unitResponse struct {
	ID         string           `json:"id"`
	Content    string           `json:"content"`
	ParseError string           `json:"parse_error,omitempty"`
	Kind       domain.ExitKind  `json:"kind,omitempty"`
	Handles    []string         `json:"handles,omitempty"`
	Outlets    []outletResponse `json:"outlets,omitempty"`
}

func toUnitResponse(doc domain.UnitDocument) unitResponse {
	resp := unitResponse{ID: doc.ID, Content: doc.Content}
	if doc.ParseErr != nil {
		resp.ParseError = doc.ParseErr.Error()
		return resp
	}
	resp.Kind = doc.Unit.Exit.Kind
	resp.Handles = doc.Unit.Exit.Handles()
	for _, o := range doc.Unit.Exit.Outlets() {
		resp.Outlets = append(resp.Outlets, outletResponse{Handle: o.Handle, Target: o.Target, Role: o.Role})
	}
	return resp
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Graph())
}

// RefreshGraph handles the POST /graph/refresh request.
func (s *Server) RefreshGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.Engine.Refresh(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// GetMermaid handles the GET /graph/mermaid request.
// The optional select query parameter highlights nodes.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.GraphOverlay
	if selected := r.URL.Query()["select"]; len(selected) > 0 {
		overlay = &graph.GraphOverlay{Selected: selected}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.Engine.Graph(), overlay)))
}

// ListUnits handles the GET /units request.
func (s *Server) ListUnits(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.ListUnits(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// CreateUnit handles the POST /units request.
func (s *Server) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var body createUnitRequest
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if err := s.Engine.CreateUnit(r.Context(), body.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondUnit(w, r, body.ID, http.StatusCreated)
}

// GetUnit handles the GET /units/{id} request.
func (s *Server) GetUnit(w http.ResponseWriter, r *http.Request) {
	s.respondUnit(w, r, urlParam(r, "id"), http.StatusOK)
}

// SaveUnit handles the PUT /units/{id} request. The content is stored as is.
func (s *Server) SaveUnit(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	var body saveUnitRequest
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if err := s.Engine.SaveUnit(r.Context(), id, body.Content); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondUnit(w, r, id, http.StatusOK)
}

// DeleteUnit handles the DELETE /units/{id}?confirm=true request.
func (s *Server) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		s.writeError(w, r, errConfirmationRequired)
		return
	}
	if err := s.Engine.DeleteUnit(r.Context(), urlParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameUnit handles the POST /units/{id}/rename request.
func (s *Server) RenameUnit(w http.ResponseWriter, r *http.Request) {
	var body renameRequest
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if err := s.Engine.Rename(r.Context(), urlParam(r, "id"), body.NewID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Engine.Graph())
}

// ConnectEdge handles the POST /edges request.
func (s *Server) ConnectEdge(w http.ResponseWriter, r *http.Request) {
	var body connectRequest
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if err := s.Engine.Connect(r.Context(), body.Source, body.Target, body.Handle); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Engine.Graph())
}

// DisconnectEdge handles the DELETE /edges/{source}/{handle}?confirm=true request.
func (s *Server) DisconnectEdge(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		s.writeError(w, r, errConfirmationRequired)
		return
	}
	err := s.Engine.Disconnect(r.Context(), urlParam(r, "source"), urlParam(r, "handle"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Engine.Graph())
}

// RestyleEdge handles the PATCH /edges/{source}/{handle}/style request.
func (s *Server) RestyleEdge(w http.ResponseWriter, r *http.Request) {
	var body restyleRequest
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	err := s.Engine.Restyle(r.Context(), urlParam(r, "source"), urlParam(r, "handle"), body.Field, body.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Engine.Graph())
}

func (s *Server) respondUnit(w http.ResponseWriter, r *http.Request, id string, status int) {
	doc, err := s.Engine.ReadUnit(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, toUnitResponse(doc))
}

// urlParam returns a decoded route parameter. chi matches on the raw path
// when the request carries escaped separators.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
