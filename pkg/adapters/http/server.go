package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/internal/logging"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Engine defines the editor operations served over HTTP.
type Engine interface {
	Graph() *domain.Graph
	Refresh(ctx context.Context) (*domain.Graph, error)
	ListUnits(ctx context.Context) ([]string, error)
	ReadUnit(ctx context.Context, id string) (domain.UnitDocument, error)
	CreateUnit(ctx context.Context, id string) error
	SaveUnit(ctx context.Context, id, text string) error
	DeleteUnit(ctx context.Context, id string) error
	Connect(ctx context.Context, source, target, handle string) error
	Disconnect(ctx context.Context, source, handle string) error
	Restyle(ctx context.Context, source, handle, field, value string) error
	Rename(ctx context.Context, oldID, newID string) error
	MoveUnit(ctx context.Context, oldID, newID string) error
}

var _ Engine = (*storygraph.Editor)(nil)

// Server serves an Engine over a REST API.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager whose Hooks feed the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/graph", func(r chi.Router) {
		r.Get("/", s.GetGraph)
		r.Post("/refresh", s.RefreshGraph)
		r.Get("/mermaid", s.GetMermaid)
	})
	r.Get("/events", s.SubscribeEvents)

	r.Route("/units", func(r chi.Router) {
		r.Get("/", s.ListUnits)
		r.Post("/", s.CreateUnit)
		r.Get("/{id}", s.GetUnit)
		r.Put("/{id}", s.SaveUnit)
		r.Delete("/{id}", s.DeleteUnit)
		r.Post("/{id}/rename", s.RenameUnit)
	})

	r.Route("/edges", func(r chi.Router) {
		r.Post("/", s.ConnectEdge)
		r.Delete("/{source}/{handle}", s.DisconnectEdge)
		r.Patch("/{source}/{handle}/style", s.RestyleEdge)
	})

	s.mountStoreAPI(r)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "storygraph-http",
		"version": storygraph.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
