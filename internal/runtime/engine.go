package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/storygraph/internal/logging"
	"github.com/aretw0/storygraph/pkg/document"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/aretw0/storygraph/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultReadConcurrency bounds the parallel reads of a rebuild.
const DefaultReadConcurrency = 8

// Engine keeps the story graph in sync with a UnitStore.
//
// Every mutation reads the current document from the store, edits its typed
// form, writes it back and rebuilds the whole graph from the store. The graph
// is swapped atomically, so readers always see a complete snapshot.
type Engine struct {
	store ports.UnitStore
	graph atomic.Pointer[domain.Graph]

	build           BuildOptions
	readConcurrency int
	hooks           domain.LifecycleHooks
	logger          *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithTheme selects the default edge palette.
func WithTheme(theme Theme) EngineOption {
	return func(e *Engine) {
		e.build.Theme = theme
	}
}

// WithLayout sets the grid used for new nodes.
func WithLayout(layout Layout) EngineOption {
	return func(e *Engine) {
		e.build.Layout = layout
	}
}

// WithReadConcurrency bounds the parallel reads of a rebuild.
func WithReadConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.readConcurrency = n
		}
	}
}

// NewEngine creates an engine over store. The graph starts empty until the
// first Refresh.
func NewEngine(store ports.UnitStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:           store,
		readConcurrency: DefaultReadConcurrency,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.build = e.build.withDefaults()
	e.graph.Store(&domain.Graph{Nodes: []domain.Node{}, Edges: []domain.Edge{}})
	return e
}

// Graph returns the current snapshot. It must not be modified.
func (e *Engine) Graph() *domain.Graph {
	return e.graph.Load()
}

// Theme returns the palette theme in use.
func (e *Engine) Theme() Theme {
	return e.build.Theme
}

// Refresh rebuilds the graph from the store.
// On failure the previous graph is kept and a *domain.StoreError is returned.
func (e *Engine) Refresh(ctx context.Context) (*domain.Graph, error) {
	return e.rebuild(ctx, e.Graph().Positions())
}

func (e *Engine) rebuild(ctx context.Context, positions map[string]domain.Position) (*domain.Graph, error) {
	start := time.Now()

	docs, err := e.readAll(ctx)
	if err != nil {
		return nil, err
	}

	g, failures := BuildGraph(docs, positions, e.build)
	for _, f := range failures {
		e.logger.WarnContext(ctx, "unit does not parse", "error", f)
	}

	prev := e.graph.Swap(g)

	e.logger.DebugContext(ctx, "graph rebuilt", "nodes", len(g.Nodes), "edges", len(g.Edges), "parse_failures", len(failures))
	if e.hooks.OnRebuild != nil {
		e.hooks.OnRebuild(ctx, &domain.RebuildEvent{
			EventBase:     domain.EventBase{Timestamp: time.Now(), Type: domain.EventRebuild},
			Previous:      prev,
			Graph:         g,
			ParseFailures: len(failures),
			Duration:      time.Since(start),
		})
	}
	return g, nil
}

// readAll lists the store and reads every unit concurrently. Results keep the
// list order. A unit deleted between list and read is skipped.
func (e *Engine) readAll(ctx context.Context) ([]domain.UnitDocument, error) {
	ids, err := e.store.List(ctx)
	if err != nil {
		return nil, storeErr("list", "", err)
	}

	docs := make([]domain.UnitDocument, len(ids))
	found := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.readConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			text, err := e.store.Read(gctx, id)
			if errors.Is(err, domain.ErrUnitNotFound) {
				e.logger.DebugContext(gctx, "unit vanished during rebuild", "unit", id)
				return nil
			}
			if err != nil {
				return storeErr("read", id, err)
			}
			docs[i] = document.ParseDocument(id, text)
			found[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := docs[:0]
	for i := range docs {
		if found[i] {
			out = append(out, docs[i])
		}
	}
	return out, nil
}

// ListUnits returns the unit ids held by the store.
func (e *Engine) ListUnits(ctx context.Context) ([]string, error) {
	ids, err := e.store.List(ctx)
	if err != nil {
		return nil, storeErr("list", "", err)
	}
	return ids, nil
}

// Watch forwards change notifications of a Watchable store.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.store.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("store %T does not support watching", e.store)
}

func (e *Engine) emit(ctx context.Context, op domain.Operation, id, handle string, written int, err error) {
	if err != nil {
		e.logger.ErrorContext(ctx, "mutation failed", "op", op, "unit", id, "handle", handle, "error", err)
	} else {
		e.logger.InfoContext(ctx, "mutation applied", "op", op, "unit", id, "handle", handle, "written", written)
	}
	if e.hooks.OnMutation != nil {
		e.hooks.OnMutation(ctx, &domain.MutationEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventMutation},
			Op:        op,
			UnitID:    id,
			Handle:    handle,
			Written:   written,
			Err:       err,
		})
	}
}

// storeErr wraps a gateway failure. Errors that are already classified pass
// through unchanged.
func storeErr(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var se *domain.StoreError
	if errors.As(err, &se) || domain.IsParseError(err) {
		return err
	}
	return &domain.StoreError{Op: op, UnitID: id, Err: err}
}
