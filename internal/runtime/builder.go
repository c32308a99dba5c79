package runtime

import (
	"github.com/aretw0/storygraph/pkg/domain"
)

// Theme selects the default edge palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Palette holds the default edge colors for each role.
type Palette struct {
	Primary string
	Branch  string
}

// PaletteFor returns the palette of theme. Unknown themes fall back to dark.
func PaletteFor(theme Theme) Palette {
	if theme == ThemeLight {
		return Palette{Primary: "#CC3300", Branch: "#006D77"}
	}
	return Palette{Primary: "#FF9900", Branch: "#00CCFF"}
}

// Layout is the grid used to place nodes that have no previous position.
type Layout struct {
	ColumnWidth float64
	RowHeight   float64
	Columns     int
}

// DefaultLayout is four columns of 450x350 cells.
var DefaultLayout = Layout{ColumnWidth: 450, RowHeight: 350, Columns: 4}

// Slot returns the position of the k-th new node.
func (l Layout) Slot(k int) domain.Position {
	cols := l.Columns
	if cols <= 0 {
		cols = DefaultLayout.Columns
	}
	return domain.Position{
		X: float64(k%cols) * l.ColumnWidth,
		Y: float64(k/cols) * l.RowHeight,
	}
}

// BuildOptions tunes BuildGraph.
type BuildOptions struct {
	Theme  Theme
	Layout Layout
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Theme == "" {
		o.Theme = ThemeDark
	}
	if o.Layout.Columns == 0 {
		o.Layout = DefaultLayout
	}
	return o
}

// BuildGraph projects docs into a graph.
//
// Every document becomes a node, in input order. Nodes listed in previous keep
// their position; the others are placed on the layout grid. Documents that
// failed to parse contribute a node without edges and their error is
// returned. Edge targets are not checked against the collection.
func BuildGraph(docs []domain.UnitDocument, previous map[string]domain.Position, opts BuildOptions) (*domain.Graph, []error) {
	opts = opts.withDefaults()
	palette := PaletteFor(opts.Theme)

	g := &domain.Graph{
		Nodes: make([]domain.Node, 0, len(docs)),
		Edges: []domain.Edge{},
	}
	var failures []error
	slot := 0

	for _, doc := range docs {
		node := domain.Node{
			ID:      doc.ID,
			Label:   doc.ID,
			Content: doc.Content,
		}
		if pos, ok := previous[doc.ID]; ok {
			node.Position = pos
		} else {
			node.Position = opts.Layout.Slot(slot)
			slot++
		}

		if doc.ParseErr != nil || doc.Unit == nil {
			err := doc.ParseErr
			if err == nil {
				err = &domain.ParseError{UnitID: doc.ID, Reason: "missing unit"}
			}
			node.ParseError = err.Error()
			failures = append(failures, err)
			g.Nodes = append(g.Nodes, node)
			continue
		}

		exit := &doc.Unit.Exit
		node.Kind = exit.Kind
		node.Handles = exit.Handles()
		node.EventCount = len(doc.Unit.Events)
		g.Nodes = append(g.Nodes, node)

		for _, out := range exit.Outlets() {
			g.Edges = append(g.Edges, resolveEdge(doc.ID, out, exit.Visual, palette))
		}
	}

	return g, failures
}

func resolveEdge(source string, out domain.Outlet, visuals domain.Visuals, palette Palette) domain.Edge {
	edge := domain.Edge{
		ID:          domain.EdgeID(source, out.Target, out.Handle),
		Source:      source,
		Target:      out.Target,
		Handle:      out.Handle,
		Role:        out.Role,
		Color:       palette.Branch,
		StrokeStyle: domain.StrokeSolid,
		Animated:    true,
	}
	if out.Role == domain.RolePrimary {
		edge.Color = palette.Primary
	}

	style, ok := visuals.Get(out.Handle)
	if !ok {
		return edge
	}
	if style.Color != "" {
		edge.Color = style.Color
	}
	if style.StrokeStyle.Valid() {
		edge.StrokeStyle = style.StrokeStyle
	}
	if style.Animated != nil {
		edge.Animated = *style.Animated
	}
	return edge
}
