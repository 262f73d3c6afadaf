package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/forensilog/pkg/config"
	"github.com/ccollicutt/forensilog/pkg/store"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// env holds what every command needs once flags are parsed.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	store  store.Store
	cache  *store.Cache
}

// configPath returns the persistent --config flag, or "" when the command
// is not attached to the root.
func configPath(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil {
		return f.Value.String()
	}
	return ""
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newEnv loads configuration and builds the logger. The cache is opened
// only when withCache is set; an unreachable cache is logged and disabled.
func newEnv(cmd *cobra.Command, withCache bool) (*env, error) {
	ctx := commandContext(cmd)

	cfg, err := config.Load(ctx, configPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	rt := &env{
		cfg:    cfg,
		logger: newLogger(cfg.Log, cmd.ErrOrStderr()),
	}

	if withCache {
		s, err := openStore(ctx, cfg.Cache)
		if err != nil {
			rt.logger.Warn("cache unavailable", "backend", cfg.Cache.Backend, "error", err)
		} else if s != nil {
			rt.store = s
			rt.cache = store.NewCache(s,
				store.WithNamespace(cfg.Cache.Namespace),
				store.WithChunkSize(cfg.Cache.ChunkSize),
			)
		}
	}

	return rt, nil
}

func (rt *env) Close() {
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			rt.logger.Warn("closing cache", "error", err)
		}
	}
}

// newLogger builds the diagnostic logger. Level and format were checked by
// config.Validate.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore opens the configured backend. It returns nil for the none backend.
func openStore(ctx context.Context, cfg config.CacheConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.CacheBackendNone:
		return nil, nil
	case config.CacheBackendMemory:
		return store.NewMemoryStore(store.WithMaxValueSize(cfg.MaxValueBytes)), nil
	case config.CacheBackendRedis:
		rs, err := store.NewRedisStore(cfg.RedisURL, cfg.TTL, cfg.MaxValueBytes)
		if err != nil {
			return nil, err
		}
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return rs, nil
	default:
		return store.NewSQLiteStore(cfg.Path)
	}
}
