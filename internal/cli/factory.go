package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/storygraph"
	"github.com/aretw0/storygraph/internal/logging"
	"github.com/aretw0/storygraph/pkg/adapters/file"
	loamstore "github.com/aretw0/storygraph/pkg/adapters/loam"
	"github.com/aretw0/storygraph/pkg/adapters/memory"
	redisstore "github.com/aretw0/storygraph/pkg/adapters/redis"
	"github.com/aretw0/storygraph/pkg/adapters/remote"
	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/aretw0/storygraph/pkg/ports"
)

// CreateLogger configures the application logger.
// Without --debug only warnings and errors are written, to stderr.
func CreateLogger(cfg Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return logging.New(level, logging.ParseFormat(cfg.LogFormat))
}

// OpenStore builds the unit store selected by cfg. The returned function
// releases its resources.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (ports.UnitStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case StoreFile:
		return file.New(cfg.Dir, file.WithLogger(logger)), noop, nil
	case StoreLoam:
		s, err := loamstore.Open(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case StoreRedis:
		s := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redisstore.WithPrefix(cfg.RedisPrefix))
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("redis at %s is not reachable: %w", cfg.RedisAddr, err)
		}
		return s, s.Close, nil
	case StoreRemote:
		return remote.New(cfg.RemoteURL, remote.WithLogger(logger)), noop, nil
	case StoreMemory:
		return memory.NewStore(), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// OpenEditor opens the configured store and builds the initial graph.
func OpenEditor(ctx context.Context, cfg Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*storygraph.Editor, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	all := append([]domain.LifecycleHooks{createDebugHooks(logger)}, hooks...)
	name := cfg.Dir
	if cfg.Store == StoreRedis || cfg.Store == StoreRemote || cfg.Store == StoreMemory {
		name = cfg.Store
	}

	ed, err := storygraph.New(ctx, name,
		storygraph.WithStore(store),
		storygraph.WithLogger(logger),
		storygraph.WithTheme(storygraph.Theme(cfg.Theme)),
		storygraph.WithLifecycleHooks(domain.ChainHooks(all...)),
	)
	if err != nil {
		_ = closeStore()
		return nil, nil, fmt.Errorf("error initializing editor: %w", err)
	}
	return ed, closeStore, nil
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRebuild: func(ctx context.Context, e *domain.RebuildEvent) {
			logger.Debug("Graph Rebuilt",
				"nodes", len(e.Graph.Nodes),
				"edges", len(e.Graph.Edges),
				"parse_failures", e.ParseFailures,
				"duration", e.Duration,
			)
		},
	}
}
