package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// EnvPrefix prefixes the environment variables that provide flag defaults.
const EnvPrefix = "STORYGRAPH_"

// Store kinds accepted by --store.
const (
	StoreFile   = "file"
	StoreLoam   = "loam"
	StoreRedis  = "redis"
	StoreRemote = "remote"
	StoreMemory = "memory"
)

// Config holds the settings shared by every command.
type Config struct {
	Dir           string
	Store         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RemoteURL     string
	Theme         string
	Debug         bool
	LogFormat     string
}

// DefaultConfig returns the built-in defaults overridden by STORYGRAPH_*
// environment variables.
func DefaultConfig() Config {
	return Config{
		Dir:           env("DIR", "."),
		Store:         env("STORE", StoreFile),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPassword: env("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),
		RedisPrefix:   env("REDIS_PREFIX", "storygraph:"),
		RemoteURL:     env("REMOTE_URL", "http://localhost:8000"),
		Theme:         env("THEME", "dark"),
		Debug:         envBool("DEBUG", false),
		LogFormat:     env("LOG_FORMAT", "text"),
	}
}

// BindFlags registers cfg fields as persistent flags of cmd, using the
// current values of cfg as defaults.
func BindFlags(cmd *cobra.Command, cfg *Config) {
	f := cmd.PersistentFlags()
	f.StringVar(&cfg.Dir, "dir", cfg.Dir, "Directory holding the unit documents (file and loam stores)")
	f.StringVar(&cfg.Store, "store", cfg.Store, "Unit store: file, loam, redis, remote or memory")
	f.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address")
	f.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	f.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database")
	f.StringVar(&cfg.RedisPrefix, "redis-prefix", cfg.RedisPrefix, "Prefix of the redis keys")
	f.StringVar(&cfg.RemoteURL, "remote-url", cfg.RemoteURL, "Base URL of the remote store service")
	f.StringVar(&cfg.Theme, "theme", cfg.Theme, "Edge palette: dark or light")
	f.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging to stderr")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
}

// Validate rejects unknown store kinds and themes.
func (c Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreLoam, StoreRedis, StoreRemote, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want file, loam, redis, remote or memory)", c.Store)
	}
	switch c.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("unknown theme %q (want dark or light)", c.Theme)
	}
	return nil
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(env(key, "")); err == nil {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(env(key, "")); err == nil {
		return b
	}
	return fallback
}
