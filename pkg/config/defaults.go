package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Default values for configuration.
const (
	DefaultCacheNamespace  = "forensilog"
	DefaultChunkSize       = 1000000
	DefaultCacheTTL        = 24 * time.Hour
	DefaultTopAddresses    = 10
	DefaultSuspiciousLimit = 20
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultWebhookTimeout  = 10 * time.Second
)

// Environment variable names.
const (
	EnvCacheBackend = "FORENSILOG_CACHE_BACKEND"
	EnvRedisURL     = "FORENSILOG_REDIS_URL"
	EnvCachePath    = "FORENSILOG_CACHE_PATH"
	EnvLogLevel     = "FORENSILOG_LOG_LEVEL"
)

// DefaultCachePath is the SQLite cache file under the user cache directory.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "forensilog", "cache.db")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend:   CacheBackendSQLite,
			Path:      DefaultCachePath(),
			Namespace: DefaultCacheNamespace,
			ChunkSize: DefaultChunkSize,
			TTL:       DefaultCacheTTL,
		},
		Report: ReportConfig{
			TopAddresses:    DefaultTopAddresses,
			SuspiciousLimit: DefaultSuspiciousLimit,
		},
		Analysis: AnalysisConfig{
			Workers: runtime.NumCPU(),
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Webhooks: []WebhookConfig{},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if backend := os.Getenv(EnvCacheBackend); backend != "" {
		c.Cache.Backend = CacheBackend(backend)
	}
	if redisURL := os.Getenv(EnvRedisURL); redisURL != "" {
		c.Cache.RedisURL = redisURL
	}
	if path := os.Getenv(EnvCachePath); path != "" {
		c.Cache.Path = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}
