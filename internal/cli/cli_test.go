package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/storygraph/internal/logging"
	"github.com/aretw0/storygraph/pkg/adapters/file"
	"github.com/aretw0/storygraph/pkg/adapters/memory"
	redisstore "github.com/aretw0/storygraph/pkg/adapters/redis"
	"github.com/aretw0/storygraph/pkg/adapters/remote"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Env(t *testing.T) {
	t.Setenv("STORYGRAPH_STORE", "redis")
	t.Setenv("STORYGRAPH_REDIS_DB", "3")
	t.Setenv("STORYGRAPH_DEBUG", "true")
	t.Setenv("STORYGRAPH_THEME", " ")

	cfg := DefaultConfig()
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "dark", cfg.Theme, "blank values fall back to the default")
}

func TestBindFlags(t *testing.T) {
	cfg := Config{Store: StoreFile, Theme: "dark"}
	cmd := &cobra.Command{Use: "x", Run: func(*cobra.Command, []string) {}}
	BindFlags(cmd, &cfg)

	cmd.SetArgs([]string{"--store", "memory", "--theme", "light", "--redis-db", "2"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Store: StoreLoam, Theme: "light"}, ""},
		{"unknown store", Config{Store: "s3", Theme: "dark"}, "unknown store"},
		{"unknown theme", Config{Store: StoreFile, Theme: "neon"}, "unknown theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()
	mr := miniredis.RunT(t)

	tests := []struct {
		name  string
		cfg   Config
		check func(t *testing.T, store any)
	}{
		{"file", Config{Store: StoreFile, Dir: t.TempDir()}, func(t *testing.T, s any) { assert.IsType(t, &file.Store{}, s) }},
		{"memory", Config{Store: StoreMemory}, func(t *testing.T, s any) { assert.IsType(t, &memory.Store{}, s) }},
		{"redis", Config{Store: StoreRedis, RedisAddr: mr.Addr(), RedisPrefix: "t:"}, func(t *testing.T, s any) { assert.IsType(t, &redisstore.Store{}, s) }},
		{"remote", Config{Store: StoreRemote, RemoteURL: "http://127.0.0.1:1"}, func(t *testing.T, s any) { assert.IsType(t, &remote.Store{}, s) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closeStore, err := OpenStore(ctx, tt.cfg, logger)
			require.NoError(t, err)
			defer closeStore()
			tt.check(t, store)
		})
	}
}

func TestOpenStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	_, _, err := OpenStore(context.Background(), Config{Store: StoreRedis, RedisAddr: addr}, logging.NewNop())
	assert.ErrorContains(t, err, "not reachable")
}

func TestOpenEditor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.yaml"), []byte("exitCondition:\n  type: Linear\n  nextUnit: hall\n"), 0644))

	cfg := Config{Store: StoreFile, Dir: dir, Theme: "light"}
	ed, closeStore, err := OpenEditor(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer closeStore()

	g := ed.Graph()
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "#CC3300", g.Edges[0].Color)

	_, _, err = OpenEditor(context.Background(), Config{Store: "nope", Theme: "dark"}, logging.NewNop())
	assert.Error(t, err)
}

func TestConfirmer(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		interactive bool
		assumeYes   bool
		wantErr     bool
	}{
		{"assume yes", "", false, true, false},
		{"non interactive", "y\n", false, false, true},
		{"yes", "yes\n", true, false, false},
		{"y without newline", "Y", true, false, false},
		{"no", "n\n", true, false, true},
		{"empty", "\n", true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := &Confirmer{In: strings.NewReader(tt.input), Out: &out, Interactive: tt.interactive, AssumeYes: tt.assumeYes}
			err := c.Confirm("Delete intro?")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotConfirmed)
			} else {
				assert.NoError(t, err)
			}
			if tt.interactive && !tt.assumeYes {
				assert.Contains(t, out.String(), "Delete intro? [y/N]")
			}
		})
	}
}

func TestPrintMarkdown_NotATerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintMarkdown(&buf, "dark", "# Units\n"))
	assert.Equal(t, "# Units\n", buf.String())
}
