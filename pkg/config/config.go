package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file. An empty path yields the
// defaults with environment overrides applied.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in defaults for
// zero values.
func Validate(cfg *Config) error {
	if err := validateCache(&cfg.Cache); err != nil {
		return fmt.Errorf("cache.%w", err)
	}

	if err := validateReport(&cfg.Report); err != nil {
		return fmt.Errorf("report.%w", err)
	}

	if cfg.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers: must be >= 0, got %d", cfg.Analysis.Workers)
	}
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = runtime.NumCPU()
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log.%w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateCache(c *CacheConfig) error {
	if c.Backend == "" {
		c.Backend = CacheBackendSQLite
	}

	switch c.Backend {
	case CacheBackendNone, CacheBackendMemory:
	case CacheBackendSQLite:
		if c.Path == "" {
			c.Path = DefaultCachePath()
		}
	case CacheBackendRedis:
		c.RedisURL = expandEnvVar(c.RedisURL)
		if c.RedisURL == "" {
			return errors.New("redis_url: required for the redis backend")
		}
		u, err := url.Parse(c.RedisURL)
		if err != nil {
			return fmt.Errorf("redis_url: %w", err)
		}
		if u.Scheme != "redis" && u.Scheme != "rediss" {
			return fmt.Errorf("redis_url: scheme must be redis or rediss, got %q", u.Scheme)
		}
	default:
		return fmt.Errorf("backend: invalid backend %q (must be none, memory, sqlite, or redis)", c.Backend)
	}

	if c.Namespace == "" {
		c.Namespace = DefaultCacheNamespace
	}

	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size: must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}

	if c.MaxValueBytes < 0 {
		return fmt.Errorf("max_value_bytes: must be >= 0, got %d", c.MaxValueBytes)
	}

	if c.TTL < 0 {
		return fmt.Errorf("ttl: must be >= 0, got %s", c.TTL)
	}

	return nil
}

func validateReport(r *ReportConfig) error {
	if r.TopAddresses < 0 {
		return fmt.Errorf("top_addresses: must be >= 0, got %d", r.TopAddresses)
	}
	if r.TopAddresses == 0 {
		r.TopAddresses = DefaultTopAddresses
	}

	if r.SuspiciousLimit < 0 {
		return fmt.Errorf("suspicious_limit: must be >= 0, got %d", r.SuspiciousLimit)
	}
	if r.SuspiciousLimit == 0 {
		r.SuspiciousLimit = DefaultSuspiciousLimit
	}

	return nil
}

func validateLog(l *LogConfig) error {
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	if _, err := ParseLevel(l.Level); err != nil {
		return fmt.Errorf("level: %w", err)
	}

	if l.Format == "" {
		l.Format = DefaultLogFormat
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format: invalid format %q (must be text or json)", l.Format)
	}

	return nil
}

// ParseLevel parses a log level name (debug, info, warn, error).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid level %q (must be debug, info, warn, or error)", s)
	}
	return level, nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	// Validate trigger if specified
	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnSuspicious, WebhookTriggerAlways, WebhookTriggerNever:
			// Valid
		default:
			return fmt.Errorf("invalid trigger %q (must be on_suspicious, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnSuspicious
	}

	// Default timeout
	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}
