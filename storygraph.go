package storygraph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/storygraph/internal/runtime"
	"github.com/aretw0/storygraph/pkg/adapters/file"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/aretw0/storygraph/pkg/ports"
)

// Theme selects the default edge palette.
type Theme = runtime.Theme

const (
	ThemeDark  = runtime.ThemeDark
	ThemeLight = runtime.ThemeLight
)

// Editor is the high-level entry point of the library.
// It keeps a story graph in sync with a unit store and exposes the editing
// operations that rewrite unit documents.
type Editor struct {
	runtime     *runtime.Engine
	store       ports.UnitStore
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithStore injects a custom UnitStore, bypassing the default file store.
func WithStore(s ports.UnitStore) Option {
	return func(e *Editor) {
		e.store = s
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithTheme selects the default edge palette (dark or light).
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithTheme(theme))
	}
}

// WithLayout sets the grid used to place new nodes.
func WithLayout(columnWidth, rowHeight float64, columns int) Option {
	return func(e *Editor) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLayout(runtime.Layout{
			ColumnWidth: columnWidth,
			RowHeight:   rowHeight,
			Columns:     columns,
		}))
	}
}

// WithReadConcurrency bounds the parallel reads of a rebuild.
func WithReadConcurrency(n int) Option {
	return func(e *Editor) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithReadConcurrency(n))
	}
}

// New initializes an Editor and builds the initial graph.
// By default, units are YAML files in dir. If WithStore is provided, dir is
// only used as a descriptive name and may be empty.
func New(ctx context.Context, dir string, opts ...Option) (*Editor, error) {
	ed := &Editor{}
	for _, opt := range opts {
		opt(ed)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if ed.logger == nil {
		ed.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if ed.store == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom store is provided")
		}
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		ed.Name = filepath.Base(absPath)
		ed.store = file.New(absPath, file.WithLogger(ed.logger))
	} else if dir != "" {
		ed.Name = filepath.Base(dir)
	}

	if ed.Name != "" {
		ed.logger = ed.logger.With("story", ed.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(ed.hooks),
		runtime.WithLogger(ed.logger),
	}
	runtimeOpts = append(runtimeOpts, ed.runtimeOpts...)
	ed.runtime = runtime.NewEngine(ed.store, runtimeOpts...)

	if _, err := ed.runtime.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("initial build failed: %w", err)
	}
	return ed, nil
}

// Store returns the underlying unit store.
func (ed *Editor) Store() ports.UnitStore {
	return ed.store
}

// Theme returns the palette theme in use.
func (ed *Editor) Theme() Theme {
	return ed.runtime.Theme()
}

// Graph returns the current snapshot. It must not be modified.
func (ed *Editor) Graph() *domain.Graph {
	return ed.runtime.Graph()
}

// Refresh rebuilds the graph from the store. On failure the previous graph
// is kept.
func (ed *Editor) Refresh(ctx context.Context) (*domain.Graph, error) {
	return ed.runtime.Refresh(ctx)
}

// ListUnits returns the unit ids held by the store.
func (ed *Editor) ListUnits(ctx context.Context) ([]string, error) {
	return ed.runtime.ListUnits(ctx)
}

// ReadUnit returns the raw text of a unit with its parsed form or parse error.
func (ed *Editor) ReadUnit(ctx context.Context, id string) (domain.UnitDocument, error) {
	return ed.runtime.ReadUnit(ctx, id)
}

// CreateUnit writes the new-unit template under id.
func (ed *Editor) CreateUnit(ctx context.Context, id string) error {
	return ed.runtime.CreateUnit(ctx, id)
}

// SaveUnit replaces the raw text of a unit.
func (ed *Editor) SaveUnit(ctx context.Context, id, text string) error {
	return ed.runtime.SaveUnit(ctx, id, text)
}

// DeleteUnit removes a unit. References to it are left dangling.
func (ed *Editor) DeleteUnit(ctx context.Context, id string) error {
	return ed.runtime.DeleteUnit(ctx, id)
}

// Connect points handle of source at target.
func (ed *Editor) Connect(ctx context.Context, source, target, handle string) error {
	return ed.runtime.Connect(ctx, source, target, handle)
}

// Disconnect removes the edge leaving source through handle.
func (ed *Editor) Disconnect(ctx context.Context, source, handle string) error {
	return ed.runtime.Disconnect(ctx, source, handle)
}

// Restyle sets one visual field (color, strokeStyle or animated) of an edge.
func (ed *Editor) Restyle(ctx context.Context, source, handle, field, value string) error {
	f, err := domain.ParseStyleField(field)
	if err != nil {
		return err
	}
	return ed.runtime.Restyle(ctx, source, handle, f, value)
}

// Rename moves a unit and repairs every reference to it.
func (ed *Editor) Rename(ctx context.Context, oldID, newID string) error {
	return ed.runtime.Rename(ctx, oldID, newID)
}

// MoveUnit renames a unit in the store without repairing references.
func (ed *Editor) MoveUnit(ctx context.Context, oldID, newID string) error {
	return ed.runtime.MoveUnit(ctx, oldID, newID)
}

// Watch forwards the change notifications of a watchable store.
func (ed *Editor) Watch(ctx context.Context) (<-chan string, error) {
	return ed.runtime.Watch(ctx)
}

// Sync rebuilds the graph on external changes until ctx is done.
func (ed *Editor) Sync(ctx context.Context, settle time.Duration) error {
	return ed.runtime.Sync(ctx, settle)
}
