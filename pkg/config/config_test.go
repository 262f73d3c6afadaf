package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// clearEnv isolates a test from FORENSILOG_* variables set by the caller.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvCacheBackend, EnvRedisURL, EnvCachePath, EnvLogLevel} {
		t.Setenv(name, "")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	content := `
cache:
  backend: sqlite
  path: /tmp/forensilog-test.db
  namespace: case-42
  chunk_size: 4096
report:
  top_addresses: 5
  suspicious_limit: 50
analysis:
  workers: 3
log:
  level: debug
  format: json
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cache.Backend != CacheBackendSQLite {
		t.Errorf("Cache.Backend = %q, want sqlite", cfg.Cache.Backend)
	}
	if cfg.Cache.Path != "/tmp/forensilog-test.db" {
		t.Errorf("Cache.Path = %q", cfg.Cache.Path)
	}
	if cfg.Cache.Namespace != "case-42" {
		t.Errorf("Cache.Namespace = %q, want case-42", cfg.Cache.Namespace)
	}
	if cfg.Cache.ChunkSize != 4096 {
		t.Errorf("Cache.ChunkSize = %d, want 4096", cfg.Cache.ChunkSize)
	}
	if cfg.Cache.TTL != DefaultCacheTTL {
		t.Errorf("Cache.TTL = %v, want default %v", cfg.Cache.TTL, DefaultCacheTTL)
	}
	if cfg.Report.TopAddresses != 5 || cfg.Report.SuspiciousLimit != 50 {
		t.Errorf("Report = %+v", cfg.Report)
	}
	if cfg.Analysis.Workers != 3 {
		t.Errorf("Analysis.Workers = %d, want 3", cfg.Analysis.Workers)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Backend != CacheBackendSQLite {
		t.Errorf("Cache.Backend = %q, want sqlite", cfg.Cache.Backend)
	}
	if cfg.Cache.Path != DefaultCachePath() {
		t.Errorf("Cache.Path = %q, want %q", cfg.Cache.Path, DefaultCachePath())
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	content := `invalid: yaml: content: [`
	path := writeTempFile(t, "invalid.yaml", content)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCacheBackend, "redis")
	t.Setenv(EnvRedisURL, "redis://cache.internal:6379/2")
	t.Setenv(EnvLogLevel, "warn")

	content := `
cache:
  backend: sqlite
log:
  level: debug
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cache.Backend != CacheBackendRedis {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.RedisURL != "redis://cache.internal:6379/2" {
		t.Errorf("Cache.RedisURL = %q", cfg.Cache.RedisURL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_CachePathOverride(t *testing.T) {
	clearEnv(t)
	override := filepath.Join(t.TempDir(), "override.db")
	t.Setenv(EnvCachePath, override)

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Path != override {
		t.Errorf("Cache.Path = %q, want %q", cfg.Cache.Path, override)
	}
}

func TestValidate_Cache(t *testing.T) {
	tests := []struct {
		name    string
		cache   CacheConfig
		wantErr string
	}{
		{name: "none", cache: CacheConfig{Backend: CacheBackendNone}},
		{name: "memory", cache: CacheConfig{Backend: CacheBackendMemory}},
		{name: "sqlite", cache: CacheConfig{Backend: CacheBackendSQLite, Path: "cache.db"}},
		{name: "redis", cache: CacheConfig{Backend: CacheBackendRedis, RedisURL: "redis://localhost:6379"}},
		{name: "rediss", cache: CacheConfig{Backend: CacheBackendRedis, RedisURL: "rediss://localhost:6380"}},
		{
			name:    "unknown backend",
			cache:   CacheConfig{Backend: "local-storage"},
			wantErr: "cache.backend: invalid backend",
		},
		{
			name:    "redis without url",
			cache:   CacheConfig{Backend: CacheBackendRedis},
			wantErr: "cache.redis_url: required",
		},
		{
			name:    "redis with http url",
			cache:   CacheConfig{Backend: CacheBackendRedis, RedisURL: "http://localhost:6379"},
			wantErr: "cache.redis_url: scheme must be redis",
		},
		{
			name:    "negative chunk size",
			cache:   CacheConfig{Backend: CacheBackendMemory, ChunkSize: -1},
			wantErr: "cache.chunk_size: must be positive",
		},
		{
			name:    "negative max value bytes",
			cache:   CacheConfig{Backend: CacheBackendMemory, MaxValueBytes: -5},
			wantErr: "cache.max_value_bytes",
		},
		{
			name:    "negative ttl",
			cache:   CacheConfig{Backend: CacheBackendMemory, TTL: -time.Second},
			wantErr: "cache.ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Cache = tt.cache
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CacheDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache = CacheConfig{}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Cache.Backend != CacheBackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.Cache.Backend)
	}
	if cfg.Cache.Path == "" {
		t.Error("Path should default for the sqlite backend")
	}
	if cfg.Cache.Namespace != DefaultCacheNamespace {
		t.Errorf("Namespace = %q, want %q", cfg.Cache.Namespace, DefaultCacheNamespace)
	}
	if cfg.Cache.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want %d", cfg.Cache.ChunkSize, DefaultChunkSize)
	}
}

func TestValidate_RedisURLFromEnv(t *testing.T) {
	t.Setenv("TEST_REDIS_URL", "redis://secret@localhost:6379")

	cfg := DefaultConfig()
	cfg.Cache = CacheConfig{Backend: CacheBackendRedis, RedisURL: "${TEST_REDIS_URL}"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Cache.RedisURL != "redis://secret@localhost:6379" {
		t.Errorf("RedisURL = %q", cfg.Cache.RedisURL)
	}
}

func TestValidate_Report(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Report = ReportConfig{}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Report.TopAddresses != DefaultTopAddresses {
		t.Errorf("TopAddresses = %d, want %d", cfg.Report.TopAddresses, DefaultTopAddresses)
	}
	if cfg.Report.SuspiciousLimit != DefaultSuspiciousLimit {
		t.Errorf("SuspiciousLimit = %d, want %d", cfg.Report.SuspiciousLimit, DefaultSuspiciousLimit)
	}

	cfg.Report.TopAddresses = -1
	err := Validate(cfg)
	if err == nil || !strings.HasPrefix(err.Error(), "report.top_addresses:") {
		t.Errorf("Validate() error = %v, want report.top_addresses prefix", err)
	}
}

func TestValidate_Workers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.Workers = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Analysis.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want %d", cfg.Analysis.Workers, runtime.NumCPU())
	}

	cfg.Analysis.Workers = -2
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for negative workers")
	}
}

func TestValidate_Log(t *testing.T) {
	tests := []struct {
		name    string
		log     LogConfig
		wantErr bool
	}{
		{"defaults", LogConfig{}, false},
		{"debug text", LogConfig{Level: "debug", Format: "text"}, false},
		{"upper case level", LogConfig{Level: "ERROR"}, false},
		{"json", LogConfig{Format: "json"}, false},
		{"bad level", LogConfig{Level: "loud"}, true},
		{"bad format", LogConfig{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Log = tt.log
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.HasPrefix(err.Error(), "log.") {
				t.Errorf("error %q should be prefixed with log.", err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Cache.Backend != CacheBackendSQLite {
		t.Errorf("Cache.Backend = %q, want sqlite", cfg.Cache.Backend)
	}
	if cfg.Cache.ChunkSize != DefaultChunkSize {
		t.Errorf("Cache.ChunkSize = %d, want %d", cfg.Cache.ChunkSize, DefaultChunkSize)
	}
	if cfg.Report.TopAddresses != DefaultTopAddresses {
		t.Errorf("Report.TopAddresses = %d", cfg.Report.TopAddresses)
	}
	if cfg.Webhooks == nil {
		t.Error("Webhooks should be initialized")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("DefaultConfig() does not validate: %v", err)
	}
}

// ============================================================================
// Webhook Validation Tests
// ============================================================================

func TestValidate_Webhook_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		Name:    "test-webhook",
		URL:     "https://example.com/webhook",
		Trigger: WebhookTriggerOnSuspicious,
		Timeout: 10 * time.Second,
	}}
	err := Validate(cfg)
	if err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_Webhook_ValidHTTP(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		URL: "http://localhost:8080/webhook",
	}}
	err := Validate(cfg)
	if err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_Webhook_MissingURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		Name:    "no-url",
		Trigger: WebhookTriggerOnSuspicious,
	}}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() expected error for missing URL")
	}
	if !strings.HasPrefix(err.Error(), "webhooks[0] (no-url):") {
		t.Errorf("error %q not prefixed with webhook path", err)
	}
}

func TestValidate_Webhook_InvalidScheme(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		URL: "ftp://example.com/webhook",
	}}
	err := Validate(cfg)
	if err == nil {
		t.Error("Validate() expected error for non-http scheme")
	}
}

func TestValidate_Webhook_InvalidTrigger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		URL:     "https://example.com/webhook",
		Trigger: "on_issues",
	}}
	err := Validate(cfg)
	if err == nil {
		t.Error("Validate() expected error for invalid trigger")
	}
}

func TestValidate_Webhook_AllTriggers(t *testing.T) {
	triggers := []WebhookTrigger{
		WebhookTriggerOnSuspicious,
		WebhookTriggerAlways,
		WebhookTriggerNever,
	}

	for _, trigger := range triggers {
		cfg := DefaultConfig()
		cfg.Webhooks = []WebhookConfig{{
			URL:     "https://example.com/webhook",
			Trigger: trigger,
		}}
		err := Validate(cfg)
		if err != nil {
			t.Errorf("Validate() with trigger %q error = %v", trigger, err)
		}
	}
}

func TestValidate_Webhook_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		URL: "https://example.com/webhook",
	}}
	err := Validate(cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerOnSuspicious {
		t.Errorf("Default trigger = %v, want %v", cfg.Webhooks[0].Trigger, WebhookTriggerOnSuspicious)
	}
	if cfg.Webhooks[0].Timeout != DefaultWebhookTimeout {
		t.Errorf("Default timeout = %v, want %v", cfg.Webhooks[0].Timeout, DefaultWebhookTimeout)
	}
}

func TestValidate_Webhook_TokenFromEnv(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_TOKEN", "secret-value")

	cfg := DefaultConfig()
	cfg.Webhooks = []WebhookConfig{{
		URL:   "https://example.com/webhook",
		Token: "${TEST_WEBHOOK_TOKEN}",
	}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Webhooks[0].Token != "secret-value" {
		t.Errorf("Token = %q, want secret-value", cfg.Webhooks[0].Token)
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_TOKEN", "secret-value")

	tests := []struct {
		input string
		want  string
	}{
		{"${TEST_WEBHOOK_TOKEN}", "secret-value"},
		{"$TEST_WEBHOOK_TOKEN", "secret-value"},
		{"plain-value", "plain-value"},
		{"", ""},
		{"${NONEXISTENT_VAR}", ""},
	}

	for _, tt := range tests {
		got := expandEnvVar(tt.input)
		if got != tt.want {
			t.Errorf("expandEnvVar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoad_WithWebhooks(t *testing.T) {
	clearEnv(t)
	content := `
cache:
  backend: memory
webhooks:
  - name: test-webhook
    url: "https://example.com/webhook"
    trigger: on_suspicious
    timeout: 30s
  - url: "https://backup.example.com/webhook"
    trigger: always
`
	path := writeTempFile(t, "config-with-webhooks.yaml", content)
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Webhooks) != 2 {
		t.Fatalf("Webhooks = %d, want 2", len(cfg.Webhooks))
	}
	if cfg.Webhooks[0].Name != "test-webhook" {
		t.Errorf("Webhook[0].Name = %q, want %q", cfg.Webhooks[0].Name, "test-webhook")
	}
	if cfg.Webhooks[0].Trigger != WebhookTriggerOnSuspicious {
		t.Errorf("Webhook[0].Trigger = %v, want %v", cfg.Webhooks[0].Trigger, WebhookTriggerOnSuspicious)
	}
	if cfg.Webhooks[0].Timeout != 30*time.Second {
		t.Errorf("Webhook[0].Timeout = %v, want 30s", cfg.Webhooks[0].Timeout)
	}
	if cfg.Webhooks[1].Trigger != WebhookTriggerAlways {
		t.Errorf("Webhook[1].Trigger = %v, want %v", cfg.Webhooks[1].Trigger, WebhookTriggerAlways)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
