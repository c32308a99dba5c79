package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renameFixture() map[string]string {
	return map[string]string{
		"A":   "exitCondition:\n  type: Linear\n  nextUnit: old\n",
		"B":   "exitCondition:\n  type: Branching\n  branches:\n    y: old\n",
		"C":   "exitCondition:\n  type: ResponseEvaluation\n  branches:\n    z: {nextUnit: old, w: 1}\n",
		"D":   "exitCondition:\n  type: Linear\n  nextUnit: elsewhere\n",
		"old": "exitCondition:\n  type: Linear\n  nextUnit: old\n",
	}
}

func TestRename_Completeness(t *testing.T) {
	engine, store := newEngine(t, renameFixture())
	ctx := context.Background()
	untouched, _ := store.Read(ctx, "D")

	require.NoError(t, engine.Rename(ctx, "old", "new"))

	a := readUnit(t, store, "A")
	assert.Equal(t, "new", a.Exit.NextUnit)

	b := readUnit(t, store, "B")
	y, _ := b.Exit.Branches.Get("y")
	assert.Equal(t, domain.Bare("new"), y)

	c := readUnit(t, store, "C")
	z, _ := c.Exit.Branches.Get("z")
	assert.Equal(t, "new", z.Unit)
	assert.True(t, z.Object)
	require.Len(t, z.Extra, 1)
	assert.Equal(t, "w", z.Extra[0].Key)
	assert.Equal(t, "1", z.Extra[0].Value.Value)

	d, _ := store.Read(ctx, "D")
	assert.Equal(t, untouched, d, "units without references are not rewritten")

	_, err := store.Read(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrUnitNotFound)

	// Self-reference is not repaired.
	renamed := readUnit(t, store, "new")
	assert.Equal(t, "old", renamed.Exit.NextUnit)

	g := engine.Graph()
	_, ok := g.Node("new")
	assert.True(t, ok)
	_, ok = g.Node("old")
	assert.False(t, ok)
	for _, e := range g.Edges {
		if e.Source != "new" {
			assert.NotEqual(t, "old", e.Target, "edge %s still points at old", e.ID)
		}
	}
}

func TestRename_CarriesPosition(t *testing.T) {
	engine, _ := newEngine(t, renameFixture())
	before, ok := engine.Graph().Node("old")
	require.True(t, ok)

	require.NoError(t, engine.Rename(context.Background(), "old", "zzz"))

	after, ok := engine.Graph().Node("zzz")
	require.True(t, ok)
	assert.Equal(t, before.Position, after.Position)
}

func TestRename_Validation(t *testing.T) {
	engine, store := newEngine(t, renameFixture())
	ctx := context.Background()

	tests := []struct {
		name   string
		oldID  string
		newID  string
		target error
	}{
		{"empty", "old", "", domain.ErrInvalidUnitID},
		{"same", "old", "old", domain.ErrInvalidUnitID},
		{"path", "old", "a/b", domain.ErrInvalidUnitID},
		{"taken", "old", "D", domain.ErrUnitExists},
		{"missing", "ghost", "spirit", domain.ErrUnitNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.Rename(ctx, tt.oldID, tt.newID)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	a := readUnit(t, store, "A")
	assert.Equal(t, "old", a.Exit.NextUnit, "rejected renames must not write")
	assert.False(t, store.renamed)
}

func TestRename_WriteFailure(t *testing.T) {
	engine, store := newEngine(t, renameFixture())
	ctx := context.Background()
	before := engine.Graph()

	store.failWrite["B"] = true
	err := engine.Rename(ctx, "old", "new")
	require.Error(t, err)
	assert.True(t, domain.IsStoreError(err))
	assert.ErrorIs(t, err, errBackend)

	// Other writes went through and are not rolled back.
	a := readUnit(t, store, "A")
	assert.Equal(t, "new", a.Exit.NextUnit)
	b := readUnit(t, store, "B")
	y, _ := b.Exit.Branches.Get("y")
	assert.Equal(t, "old", y.Unit)

	assert.False(t, store.renamed, "store rename is not attempted after a failed write")
	_, err = store.Read(ctx, "old")
	assert.NoError(t, err)
	assert.Same(t, before, engine.Graph())
}

func TestRename_SkipsUnparsable(t *testing.T) {
	units := renameFixture()
	units["broken"] = "exitCondition: [old\n"
	engine, store := newEngine(t, units)
	ctx := context.Background()

	require.NoError(t, engine.Rename(ctx, "old", "new"))

	text, err := store.Read(ctx, "broken")
	require.NoError(t, err)
	assert.Equal(t, "exitCondition: [old\n", text)
}

func TestRename_StoreRenameFailure(t *testing.T) {
	engine, store := newEngine(t, renameFixture())
	store.failRename = true

	err := engine.Rename(context.Background(), "old", "new")
	assert.ErrorIs(t, err, errBackend)
	assert.True(t, domain.IsStoreError(err))
}

func TestMoveUnit_LeavesReferences(t *testing.T) {
	engine, store := newEngine(t, renameFixture())
	ctx := context.Background()
	before, _ := engine.Graph().Node("old")

	require.NoError(t, engine.MoveUnit(ctx, "old", "moved"))

	a := readUnit(t, store, "A")
	assert.Equal(t, "old", a.Exit.NextUnit, "move does not repair references")

	after, ok := engine.Graph().Node("moved")
	require.True(t, ok)
	assert.Equal(t, before.Position, after.Position)

	err := engine.MoveUnit(ctx, "missing", "other")
	assert.ErrorIs(t, err, domain.ErrUnitNotFound)
	assert.True(t, domain.IsStoreError(err))

	assert.ErrorIs(t, engine.MoveUnit(ctx, "A", "B"), domain.ErrUnitExists)
	assert.ErrorIs(t, engine.MoveUnit(ctx, "A", ""), domain.ErrInvalidUnitID)
}
