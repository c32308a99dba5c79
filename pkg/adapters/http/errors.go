package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/storygraph/pkg/domain"
)

// errConfirmationRequired is returned by destructive routes called without
// confirm=true.
var errConfirmationRequired = errors.New("confirmation required: repeat the request with confirm=true")

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case domain.IsParseError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnitNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnitExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidUnitID),
		errors.Is(err, domain.ErrInvalidHandle),
		errors.Is(err, domain.ErrInvalidStyle):
		return http.StatusBadRequest
	case errors.Is(err, errConfirmationRequired):
		return http.StatusPreconditionRequired
	case domain.IsStoreError(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}
