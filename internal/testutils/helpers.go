package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/pkg/adapters/memory"
	"github.com/stretchr/testify/require"
)

// NewEditor builds an Editor over a memory store seeded with units.
// It fails the test immediately on error.
func NewEditor(t *testing.T, units map[string]string, opts ...storygraph.Option) *storygraph.Editor {
	t.Helper()

	opts = append([]storygraph.Option{storygraph.WithStore(memory.NewStore(units))}, opts...)
	ed, err := storygraph.New(context.Background(), "", opts...)
	require.NoError(t, err, "Failed to build editor")
	return ed
}

// WriteUnits creates a temporary directory holding one <id>.yaml file per
// unit and returns its absolute path.
func WriteUnits(t *testing.T, units map[string]string) string {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for id, text := range units {
		require.NoError(t, os.WriteFile(filepath.Join(dir, id+".yaml"), []byte(text), 0644))
	}
	return dir
}
