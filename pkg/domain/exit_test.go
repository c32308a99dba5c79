package domain_test

import (
	"testing"

	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func weight(v string) []domain.Field {
	return []domain.Field{{Key: "weight", Value: &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v}}}
}

func TestConnect(t *testing.T) {
	t.Run("next forces linear", func(t *testing.T) {
		exit := domain.ExitCondition{Kind: domain.ExitBranching, Branches: domain.Branches{{Key: "a", Target: domain.Bare("x")}}}
		exit.Connect("c", domain.HandleNext)

		assert.Equal(t, domain.ExitLinear, exit.Kind)
		assert.Equal(t, "c", exit.NextUnit)
		assert.Len(t, exit.Branches, 1, "branch payload is kept in the document")
	})

	t.Run("empty handle is next", func(t *testing.T) {
		exit := domain.ExitCondition{Kind: domain.ExitLinear, NextUnit: "b"}
		exit.Connect("c", "")
		assert.Equal(t, "c", exit.NextUnit)
	})

	t.Run("branch on nil branches", func(t *testing.T) {
		exit := domain.ExitCondition{Kind: domain.ExitAIDecision}
		exit.Connect("c", "x")

		target, ok := exit.Branches.Get("x")
		require.True(t, ok)
		assert.Equal(t, domain.Bare("c"), target)
		assert.Equal(t, domain.ExitAIDecision, exit.Kind)
	})

	t.Run("idempotent", func(t *testing.T) {
		once := domain.ExitCondition{Kind: domain.ExitBranching}
		once.Connect("b", "x")

		twice := domain.ExitCondition{Kind: domain.ExitBranching}
		twice.Connect("b", "x")
		twice.Connect("b", "x")

		assert.True(t, domain.ExitEqual(&once, &twice))
	})

	t.Run("object target keeps extra fields", func(t *testing.T) {
		exit := domain.ExitCondition{
			Kind:     domain.ExitBranching,
			Branches: domain.Branches{{Key: "x", Target: domain.BranchTarget{Unit: "B", Object: true, Extra: weight("7")}}},
		}
		exit.Connect("C", "x")

		target, _ := exit.Branches.Get("x")
		assert.Equal(t, "C", target.Unit)
		assert.True(t, target.Object)
		require.Len(t, target.Extra, 1)
		assert.Equal(t, "7", target.Extra[0].Value.Value)
	})

	t.Run("branch order is preserved", func(t *testing.T) {
		exit := domain.ExitCondition{Kind: domain.ExitBranching}
		exit.Connect("1", "b")
		exit.Connect("2", "a")
		exit.Connect("3", "b")

		assert.Equal(t, []string{"b", "a"}, exit.Handles())
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("linear keeps tag", func(t *testing.T) {
		exit := domain.ExitCondition{Kind: domain.ExitLinear, NextUnit: "T"}
		require.NoError(t, exit.Disconnect(domain.HandleNext))

		assert.Empty(t, exit.NextUnit)
		assert.Equal(t, domain.ExitLinear, exit.Kind)
		assert.Empty(t, exit.Outlets())
	})

	t.Run("branch removes both mappings", func(t *testing.T) {
		exit := domain.ExitCondition{
			Kind:     domain.ExitBranching,
			Branches: domain.Branches{{Key: "x", Target: domain.Bare("a")}, {Key: "y", Target: domain.Bare("b")}},
			Visual:   domain.Visuals{{Handle: "x", Style: domain.VisualStyle{Color: "red"}}},
		}
		require.NoError(t, exit.Disconnect("x"))

		_, ok := exit.Branches.Get("x")
		assert.False(t, ok)
		_, ok = exit.Visual.Get("x")
		assert.False(t, ok)
		assert.Len(t, exit.Branches, 1)
	})

	t.Run("unknown branch is a no-op", func(t *testing.T) {
		exit := domain.ExitCondition{Kind: domain.ExitBranching, Branches: domain.Branches{{Key: "x", Target: domain.Bare("a")}}}
		require.NoError(t, exit.Disconnect("missing"))
		assert.Len(t, exit.Branches, 1)
	})

	t.Run("empty handle", func(t *testing.T) {
		exit := domain.ExitCondition{Kind: domain.ExitLinear}
		assert.ErrorIs(t, exit.Disconnect(""), domain.ErrInvalidHandle)
	})
}

func TestRestyle(t *testing.T) {
	exit := domain.ExitCondition{Kind: domain.ExitLinear, NextUnit: "b"}

	require.NoError(t, exit.Restyle(domain.HandleNext, domain.FieldColor, "#abcdef"))
	require.NoError(t, exit.Restyle(domain.HandleNext, domain.FieldStrokeStyle, "dashed"))
	require.NoError(t, exit.Restyle(domain.HandleNext, domain.FieldAnimated, "false"))

	style, ok := exit.Visual.Get(domain.HandleNext)
	require.True(t, ok)
	assert.Equal(t, "#abcdef", style.Color)
	assert.Equal(t, domain.StrokeDashed, style.StrokeStyle)
	require.NotNil(t, style.Animated)
	assert.False(t, *style.Animated)
	assert.Len(t, exit.Visual, 1)

	assert.ErrorIs(t, exit.Restyle(domain.HandleNext, domain.FieldStrokeStyle, "wavy"), domain.ErrInvalidStyle)
	assert.ErrorIs(t, exit.Restyle(domain.HandleNext, domain.FieldAnimated, "sometimes"), domain.ErrInvalidStyle)
	assert.ErrorIs(t, exit.Restyle(domain.HandleNext, domain.StyleField("width"), "2"), domain.ErrInvalidStyle)
	assert.ErrorIs(t, exit.Restyle("", domain.FieldColor, "red"), domain.ErrInvalidHandle)

	style, _ = exit.Visual.Get(domain.HandleNext)
	assert.Equal(t, domain.StrokeDashed, style.StrokeStyle, "failed restyle must not change the entry")
}

func TestParseStyleField(t *testing.T) {
	tests := []struct {
		in   string
		want domain.StyleField
	}{
		{"color", domain.FieldColor},
		{"Color", domain.FieldColor},
		{"strokeStyle", domain.FieldStrokeStyle},
		{"Style", domain.FieldStrokeStyle},
		{"animated", domain.FieldAnimated},
	}
	for _, tt := range tests {
		got, err := domain.ParseStyleField(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := domain.ParseStyleField("opacity")
	assert.ErrorIs(t, err, domain.ErrInvalidStyle)
}

func TestRetarget(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		exit := domain.ExitCondition{Kind: domain.ExitLinear, NextUnit: "old"}
		assert.True(t, exit.Retarget("old", "new"))
		assert.Equal(t, "new", exit.NextUnit)
	})

	t.Run("branches in both forms", func(t *testing.T) {
		exit := domain.ExitCondition{
			Kind: domain.ExitBranching,
			Branches: domain.Branches{
				{Key: "y", Target: domain.Bare("old")},
				{Key: "z", Target: domain.BranchTarget{Unit: "old", Object: true, Extra: weight("1")}},
				{Key: "w", Target: domain.Bare("other")},
			},
		}
		assert.True(t, exit.Retarget("old", "new"))

		y, _ := exit.Branches.Get("y")
		assert.Equal(t, domain.Bare("new"), y)
		z, _ := exit.Branches.Get("z")
		assert.Equal(t, "new", z.Unit)
		assert.True(t, z.Object)
		assert.Equal(t, "1", z.Extra[0].Value.Value)
		w, _ := exit.Branches.Get("w")
		assert.Equal(t, "other", w.Unit)
	})

	t.Run("inactive linear payload is not touched", func(t *testing.T) {
		exit := domain.ExitCondition{Kind: domain.ExitBranching, NextUnit: "old"}
		assert.False(t, exit.Retarget("old", "new"))
		assert.Equal(t, "old", exit.NextUnit)
	})

	t.Run("no reference", func(t *testing.T) {
		exit := domain.ExitCondition{Kind: domain.ExitLinear, NextUnit: "b"}
		assert.False(t, exit.Retarget("old", "new"))
	})
}

func TestOutlets(t *testing.T) {
	tests := []struct {
		name string
		exit domain.ExitCondition
		want []domain.Outlet
	}{
		{
			name: "linear",
			exit: domain.ExitCondition{Kind: domain.ExitLinear, NextUnit: "b"},
			want: []domain.Outlet{{Handle: "next", Target: "b", Role: domain.RolePrimary}},
		},
		{
			name: "linear without successor",
			exit: domain.ExitCondition{Kind: domain.ExitLinear},
			want: nil,
		},
		{
			name: "linear successor hides branches",
			exit: domain.ExitCondition{Kind: domain.ExitLinear, NextUnit: "b", Branches: domain.Branches{{Key: "x", Target: domain.Bare("c")}}},
			want: []domain.Outlet{{Handle: "next", Target: "b", Role: domain.RolePrimary}},
		},
		{
			name: "linear without successor falls back to branches",
			exit: domain.ExitCondition{Kind: domain.ExitLinear, Branches: domain.Branches{{Key: "x", Target: domain.Bare("c")}, {Key: "y", Target: domain.Bare("")}}},
			want: []domain.Outlet{{Handle: "x", Target: "c", Role: domain.RoleBranch}},
		},
		{
			name: "branching skips empty targets",
			exit: domain.ExitCondition{
				Kind:     domain.ExitResponseEvaluation,
				NextUnit: "ignored",
				Branches: domain.Branches{{Key: "a", Target: domain.Bare("x")}, {Key: "b", Target: domain.Bare("")}, {Key: "c", Target: domain.BranchTarget{Unit: "y", Object: true}}},
			},
			want: []domain.Outlet{{Handle: "a", Target: "x", Role: domain.RoleBranch}, {Handle: "c", Target: "y", Role: domain.RoleBranch}},
		},
		{
			name: "unknown tag is branching",
			exit: domain.ExitCondition{Kind: "PlayerResponseBranch", Branches: domain.Branches{{Key: "a", Target: domain.Bare("x")}}},
			want: []domain.Outlet{{Handle: "a", Target: "x", Role: domain.RoleBranch}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.exit.Outlets()
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandles(t *testing.T) {
	branches := domain.Branches{{Key: "x", Target: domain.Bare("a")}, {Key: "y", Target: domain.Bare("")}}

	tests := []struct {
		name string
		exit domain.ExitCondition
		want []string
	}{
		{
			name: "linear with successor",
			exit: domain.ExitCondition{Kind: domain.ExitLinear, NextUnit: "b", Branches: branches},
			want: []string{"next"},
		},
		{
			name: "linear without successor",
			exit: domain.ExitCondition{Kind: domain.ExitLinear},
			want: []string{"next"},
		},
		{
			name: "linear with leftover branches",
			exit: domain.ExitCondition{Kind: domain.ExitLinear, Branches: branches},
			want: []string{"next", "x", "y"},
		},
		{
			name: "conditional offers next",
			exit: domain.ExitCondition{Kind: domain.ExitConditional, Branches: branches},
			want: []string{"next", "x", "y"},
		},
		{
			name: "branching",
			exit: domain.ExitCondition{Kind: domain.ExitBranching, Branches: branches},
			want: []string{"x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.exit.Handles())
		})
	}
}

func TestValidateUnitID(t *testing.T) {
	valid := []string{"intro", "chapter 2", "café", "a.b", "A-1_x"}
	for _, id := range valid {
		assert.NoError(t, domain.ValidateUnitID(id), id)
	}

	invalid := []string{"", " pad", "pad ", ".hidden", "a/b", `a\b`, "tab\there"}
	for _, id := range invalid {
		assert.ErrorIs(t, domain.ValidateUnitID(id), domain.ErrInvalidUnitID, id)
	}
}

func TestErrors(t *testing.T) {
	pe := &domain.ParseError{UnitID: "u", Reason: "events"}
	assert.True(t, domain.IsParseError(pe))
	assert.Equal(t, `unit "u": events`, pe.Error())

	se := &domain.StoreError{Op: "read", UnitID: "u", Err: domain.ErrUnitNotFound}
	assert.True(t, domain.IsStoreError(se))
	assert.ErrorIs(t, se, domain.ErrUnitNotFound)
	assert.False(t, domain.IsParseError(se))
}
