package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/internal/logging"
	"github.com/aretw0/storygraph/internal/presentation/graph"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	graphURI   = "storygraph://graph"
	mermaidURI = "storygraph://graph.mmd"
)

// errConfirmationRequired is returned by destructive tools called without
// confirm set to true.
var errConfirmationRequired = errors.New("confirmation required: call again with confirm=true")

// Engine defines the editor operations exposed as MCP tools.
type Engine interface {
	Graph() *domain.Graph
	ReadUnit(ctx context.Context, id string) (domain.UnitDocument, error)
	CreateUnit(ctx context.Context, id string) error
	SaveUnit(ctx context.Context, id, text string) error
	DeleteUnit(ctx context.Context, id string) error
	Connect(ctx context.Context, source, target, handle string) error
	Disconnect(ctx context.Context, source, handle string) error
	Restyle(ctx context.Context, source, handle, field, value string) error
	Rename(ctx context.Context, oldID, newID string) error
}

var _ Engine = (*storygraph.Editor)(nil)

// UnitView is the structured result of read_unit.
type UnitView struct {
	ID         string   `json:"id" jsonschema_description:"Unit id"`
	Content    string   `json:"content" jsonschema_description:"Raw YAML document"`
	ParseError string   `json:"parse_error,omitempty" jsonschema_description:"Why the document does not parse, if it does not"`
	Kind       string   `json:"kind,omitempty" jsonschema_description:"Exit condition type"`
	Handles    []string `json:"handles,omitempty" jsonschema_description:"Outgoing connection points"`
}

// EditResult is the structured result of every editing tool.
type EditResult struct {
	Message string `json:"message" jsonschema_description:"What was changed"`
	Nodes   int    `json:"nodes" jsonschema_description:"Nodes in the rebuilt graph"`
	Edges   int    `json:"edges" jsonschema_description:"Edges in the rebuilt graph"`
}

type unitArgs struct {
	ID string `json:"id"`
}

type saveArgs struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type deleteArgs struct {
	ID      string `json:"id"`
	Confirm bool   `json:"confirm"`
}

type connectArgs struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Handle string `json:"handle"`
}

type disconnectArgs struct {
	Source  string `json:"source"`
	Handle  string `json:"handle"`
	Confirm bool   `json:"confirm"`
}

type restyleArgs struct {
	Source string `json:"source"`
	Handle string `json:"handle"`
	Field  string `json:"field"`
	Value  string `json:"value"`
}

type renameArgs struct {
	OldID string `json:"old_id"`
	NewID string `json:"new_id"`
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance. A nil logger discards output.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("storygraph-mcp", storygraph.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the current story graph: nodes with positions and resolved, styled edges."),
	), s.handleGetGraph)

	s.mcpServer.AddTool(mcp.NewTool("read_unit",
		mcp.WithDescription("Read the raw document of a unit and its parsed summary."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Unit id")),
		mcp.WithOutputSchema[UnitView](),
	), mcp.NewStructuredToolHandler(s.handleReadUnit))

	s.mcpServer.AddTool(mcp.NewTool("create_unit",
		mcp.WithDescription("Create a unit from the default template (one narration event, Linear with no successor)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the new unit")),
		mcp.WithOutputSchema[EditResult](),
	), mcp.NewStructuredToolHandler(s.handleCreateUnit))

	s.mcpServer.AddTool(mcp.NewTool("save_unit",
		mcp.WithDescription("Replace the raw YAML document of a unit. The text does not need to parse."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Unit id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full document text")),
		mcp.WithOutputSchema[EditResult](),
	), mcp.NewStructuredToolHandler(s.handleSaveUnit))

	s.mcpServer.AddTool(mcp.NewTool("delete_unit",
		mcp.WithDescription("Delete a unit. References to it from other units are left dangling."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Unit id")),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to delete")),
		mcp.WithOutputSchema[EditResult](),
	), mcp.NewStructuredToolHandler(s.handleDeleteUnit))

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Point a handle of the source unit at the target. The 'next' or empty handle makes the source Linear; any other handle is a branch."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source unit id")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target unit id")),
		mcp.WithString("handle", mcp.Description("Handle (default: next)")),
		mcp.WithOutputSchema[EditResult](),
	), mcp.NewStructuredToolHandler(s.handleConnect))

	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Remove the edge leaving the source through a handle."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source unit id")),
		mcp.WithString("handle", mcp.Required(), mcp.Description("Handle of the edge")),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to disconnect")),
		mcp.WithOutputSchema[EditResult](),
	), mcp.NewStructuredToolHandler(s.handleDisconnect))

	s.mcpServer.AddTool(mcp.NewTool("restyle",
		mcp.WithDescription("Set one visual field of an edge."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source unit id")),
		mcp.WithString("handle", mcp.Required(), mcp.Description("Handle of the edge")),
		mcp.WithString("field", mcp.Required(), mcp.Enum("color", "strokeStyle", "animated"), mcp.Description("Field to set")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Color string, solid|dashed|dotted, or true|false")),
		mcp.WithOutputSchema[EditResult](),
	), mcp.NewStructuredToolHandler(s.handleRestyle))

	s.mcpServer.AddTool(mcp.NewTool("rename_unit",
		mcp.WithDescription("Rename a unit and repair every reference to it in other units."),
		mcp.WithString("old_id", mcp.Required(), mcp.Description("Current unit id")),
		mcp.WithString("new_id", mcp.Required(), mcp.Description("New unit id")),
		mcp.WithOutputSchema[EditResult](),
	), mcp.NewStructuredToolHandler(s.handleRename))
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.engine.Graph())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode graph failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleReadUnit(ctx context.Context, request mcp.CallToolRequest, args unitArgs) (UnitView, error) {
	doc, err := s.engine.ReadUnit(ctx, args.ID)
	if err != nil {
		return UnitView{}, err
	}
	view := UnitView{ID: doc.ID, Content: doc.Content}
	if doc.ParseErr != nil {
		view.ParseError = doc.ParseErr.Error()
		return view, nil
	}
	view.Kind = string(doc.Unit.Exit.Kind)
	view.Handles = doc.Unit.Exit.Handles()
	return view, nil
}

func (s *Server) handleCreateUnit(ctx context.Context, request mcp.CallToolRequest, args unitArgs) (EditResult, error) {
	return s.edit(ctx, "create_unit", fmt.Sprintf("created %s", args.ID), func() error {
		return s.engine.CreateUnit(ctx, args.ID)
	})
}

func (s *Server) handleSaveUnit(ctx context.Context, request mcp.CallToolRequest, args saveArgs) (EditResult, error) {
	return s.edit(ctx, "save_unit", fmt.Sprintf("saved %s", args.ID), func() error {
		return s.engine.SaveUnit(ctx, args.ID, args.Content)
	})
}

func (s *Server) handleDeleteUnit(ctx context.Context, request mcp.CallToolRequest, args deleteArgs) (EditResult, error) {
	if !args.Confirm {
		return EditResult{}, errConfirmationRequired
	}
	return s.edit(ctx, "delete_unit", fmt.Sprintf("deleted %s", args.ID), func() error {
		return s.engine.DeleteUnit(ctx, args.ID)
	})
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest, args connectArgs) (EditResult, error) {
	handle := args.Handle
	if handle == "" {
		handle = domain.HandleNext
	}
	return s.edit(ctx, "connect", fmt.Sprintf("connected %s.%s -> %s", args.Source, handle, args.Target), func() error {
		return s.engine.Connect(ctx, args.Source, args.Target, args.Handle)
	})
}

func (s *Server) handleDisconnect(ctx context.Context, request mcp.CallToolRequest, args disconnectArgs) (EditResult, error) {
	if !args.Confirm {
		return EditResult{}, errConfirmationRequired
	}
	return s.edit(ctx, "disconnect", fmt.Sprintf("disconnected %s.%s", args.Source, args.Handle), func() error {
		return s.engine.Disconnect(ctx, args.Source, args.Handle)
	})
}

func (s *Server) handleRestyle(ctx context.Context, request mcp.CallToolRequest, args restyleArgs) (EditResult, error) {
	return s.edit(ctx, "restyle", fmt.Sprintf("set %s of %s.%s to %s", args.Field, args.Source, args.Handle, args.Value), func() error {
		return s.engine.Restyle(ctx, args.Source, args.Handle, args.Field, args.Value)
	})
}

func (s *Server) handleRename(ctx context.Context, request mcp.CallToolRequest, args renameArgs) (EditResult, error) {
	return s.edit(ctx, "rename_unit", fmt.Sprintf("renamed %s to %s", args.OldID, args.NewID), func() error {
		return s.engine.Rename(ctx, args.OldID, args.NewID)
	})
}

func (s *Server) edit(ctx context.Context, tool, message string, apply func() error) (EditResult, error) {
	if err := apply(); err != nil {
		s.logger.WarnContext(ctx, "MCP tool failed", "tool", tool, "error", err)
		return EditResult{}, fmt.Errorf("%s failed: %w", tool, err)
	}
	g := s.engine.Graph()
	return EditResult{Message: message, Nodes: len(g.Nodes), Edges: len(g.Edges)}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Current Story Graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Graph())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(mermaidURI, "Story Graph (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      mermaidURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.engine.Graph(), nil),
			},
		}, nil
	})
}
