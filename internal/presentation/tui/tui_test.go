package tui_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/storygraph/internal/presentation/tui"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphMarkdown(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.Node{
			{ID: "intro", Kind: domain.ExitLinear, Handles: []string{"next"}, EventCount: 2},
			{ID: "broken", ParseError: "bad | yaml"},
		},
		Edges: []domain.Edge{
			{Source: "intro", Target: "gone", Handle: "next", StrokeStyle: domain.StrokeSolid, Color: "#FF9900", Animated: true},
		},
	}

	md := tui.GraphMarkdown(g)
	assert.Contains(t, md, "| intro | Linear | next | 2 | ok |")
	assert.Contains(t, md, `bad \| yaml`)
	assert.Contains(t, md, "| intro | next | gone (missing) | solid #FF9900 animated |")
}

func TestGraphMarkdown_Empty(t *testing.T) {
	assert.Contains(t, tui.GraphMarkdown(&domain.Graph{}), "_No units._")

	md := tui.GraphMarkdown(&domain.Graph{Nodes: []domain.Node{{ID: "a"}}})
	assert.Contains(t, md, "_No edges._")
}

func TestUnitMarkdown(t *testing.T) {
	doc := domain.UnitDocument{ID: "oops", Content: "events: [", ParseErr: errors.New("unexpected end")}
	md := tui.UnitMarkdown(doc)
	assert.Contains(t, md, "> ⚠ unexpected end")
	assert.True(t, strings.HasSuffix(md, "events: [\n```\n"))
}

func TestNewRenderer(t *testing.T) {
	render, err := tui.NewRenderer("notty")
	require.NoError(t, err)

	out, err := render(tui.GraphMarkdown(&domain.Graph{Nodes: []domain.Node{{ID: "intro"}}}))
	require.NoError(t, err)
	assert.Contains(t, out, "intro")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
