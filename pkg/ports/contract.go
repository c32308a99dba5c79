package ports

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunUnitStoreContract runs a suite of tests to verify that a UnitStore
// implementation adheres to the defined interface contract.
// The store may already hold units; the suite only asserts on its own ids.
func RunUnitStoreContract(t *testing.T, store UnitStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405") + "-"

	t.Run("Write and Read", func(t *testing.T) {
		id := prefix + "write"
		text := "events: []\nexitCondition:\n  type: Linear\n  nextUnit: \"\"\n"

		require.NoError(t, store.Write(ctx, id, text), "Write should not return error")
		defer func() { _ = store.Delete(ctx, id) }()

		got, err := store.Read(ctx, id)
		require.NoError(t, err, "Read should not return error")
		assert.Equal(t, text, got)
	})

	t.Run("Write Replaces", func(t *testing.T) {
		id := prefix + "replace"
		require.NoError(t, store.Write(ctx, id, "first"))
		defer func() { _ = store.Delete(ctx, id) }()
		require.NoError(t, store.Write(ctx, id, "second"))

		got, err := store.Read(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("Read Non-Existent", func(t *testing.T) {
		_, err := store.Read(ctx, prefix+"missing")
		assert.ErrorIs(t, err, domain.ErrUnitNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "delete"
		require.NoError(t, store.Write(ctx, id, "x"))

		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Read(ctx, id)
		assert.ErrorIs(t, err, domain.ErrUnitNotFound, "Read after Delete should return ErrUnitNotFound")

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, ids, id)

		assert.ErrorIs(t, store.Delete(ctx, id), domain.ErrUnitNotFound)
	})

	t.Run("List Sorted", func(t *testing.T) {
		ids := []string{prefix + "list-b", prefix + "list-c", prefix + "list-a"}
		for _, id := range ids {
			require.NoError(t, store.Write(ctx, id, id))
		}
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		listed, err := store.List(ctx)
		require.NoError(t, err)
		for _, id := range ids {
			assert.Contains(t, listed, id)
		}
		assert.True(t, sort.StringsAreSorted(listed), "List should return sorted ids: %v", listed)
	})

	t.Run("Rename", func(t *testing.T) {
		oldID, newID := prefix+"rename-old", prefix+"rename-new"
		require.NoError(t, store.Write(ctx, oldID, "payload"))
		defer func() {
			_ = store.Delete(ctx, oldID)
			_ = store.Delete(ctx, newID)
		}()

		require.NoError(t, store.Rename(ctx, oldID, newID))

		got, err := store.Read(ctx, newID)
		require.NoError(t, err)
		assert.Equal(t, "payload", got)

		_, err = store.Read(ctx, oldID)
		assert.ErrorIs(t, err, domain.ErrUnitNotFound)

		listed, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, listed, newID)
		assert.NotContains(t, listed, oldID)
	})

	t.Run("Rename Missing", func(t *testing.T) {
		err := store.Rename(ctx, prefix+"ghost", prefix+"ghost-2")
		assert.ErrorIs(t, err, domain.ErrUnitNotFound)
	})

	t.Run("Rename Onto Existing", func(t *testing.T) {
		a, b := prefix+"taken-a", prefix+"taken-b"
		require.NoError(t, store.Write(ctx, a, "a"))
		require.NoError(t, store.Write(ctx, b, "b"))
		defer func() {
			_ = store.Delete(ctx, a)
			_ = store.Delete(ctx, b)
		}()

		assert.ErrorIs(t, store.Rename(ctx, a, b), domain.ErrUnitExists)

		got, err := store.Read(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, "b", got, "failed rename must not overwrite the target")
	})

	t.Run("Unicode Text", func(t *testing.T) {
		id := prefix + "unicode"
		text := "events:\n  - {Content: \"门开了。\"}\n"
		require.NoError(t, store.Write(ctx, id, text))
		defer func() { _ = store.Delete(ctx, id) }()

		got, err := store.Read(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, text, got)
	})
}
