// Package config provides configuration loading and validation for forensilog.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Cache    CacheConfig     `yaml:"cache"`
	Report   ReportConfig    `yaml:"report"`
	Analysis AnalysisConfig  `yaml:"analysis"`
	Log      LogConfig       `yaml:"log"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// CacheBackend selects where the last analyzed session is kept.
type CacheBackend string

const (
	// CacheBackendNone disables caching.
	CacheBackendNone CacheBackend = "none"
	// CacheBackendMemory keeps the session for the life of the process.
	CacheBackendMemory CacheBackend = "memory"
	// CacheBackendSQLite keeps the session in a local database file (default).
	CacheBackendSQLite CacheBackend = "sqlite"
	// CacheBackendRedis keeps the session in Redis.
	CacheBackendRedis CacheBackend = "redis"
)

// CacheConfig defines the session cache.
type CacheConfig struct {
	Backend CacheBackend `yaml:"backend"`

	// Path is the SQLite database file.
	Path string `yaml:"path,omitempty"`

	// RedisURL is a redis:// URL. ${VAR} is expanded.
	RedisURL string `yaml:"redis_url,omitempty"`

	// Namespace prefixes every cache key.
	Namespace string `yaml:"namespace,omitempty"`

	// ChunkSize is the largest chunk written under one key, in bytes.
	ChunkSize int `yaml:"chunk_size,omitempty"`

	// MaxValueBytes caps each stored value. Zero keeps the backend limit.
	MaxValueBytes int `yaml:"max_value_bytes,omitempty"`

	// TTL expires Redis keys. Zero keeps them until replaced.
	TTL time.Duration `yaml:"ttl,omitempty"`
}

// ReportConfig controls report rendering.
type ReportConfig struct {
	TopAddresses    int `yaml:"top_addresses,omitempty"`
	SuspiciousLimit int `yaml:"suspicious_limit,omitempty"`
}

// AnalysisConfig controls the analyzer.
type AnalysisConfig struct {
	// Workers is the number of goroutines used to analyze a batch.
	Workers int `yaml:"workers,omitempty"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text, json
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnSuspicious fires only when suspicious activity is found (default).
	WebhookTriggerOnSuspicious WebhookTrigger = "on_suspicious"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending session summaries.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_suspicious" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
