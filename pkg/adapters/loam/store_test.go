package loam_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/storygraph/pkg/adapters/loam"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/aretw0/storygraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.UnitStore = (*loam.Store)(nil)

func TestLoamStore_Lifecycle(t *testing.T) {
	store, err := loam.Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	text := "events: []\nexitCondition:\n  type: Linear\n  nextUnit: b\n"
	require.NoError(t, store.Write(ctx, "a", text))
	require.NoError(t, store.Write(ctx, "b", "events: []\n"))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	got, err := store.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(text), strings.TrimSpace(got))

	_, err = store.Read(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUnitNotFound)

	assert.ErrorIs(t, store.Rename(ctx, "a", "b"), domain.ErrUnitExists)
	require.NoError(t, store.Rename(ctx, "a", "c"))

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids)

	require.NoError(t, store.Delete(ctx, "c"))
	assert.ErrorIs(t, store.Delete(ctx, "c"), domain.ErrUnitNotFound)
}
