package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/forensilog/pkg/config"
	"github.com/ccollicutt/forensilog/pkg/parser"
	"github.com/ccollicutt/forensilog/pkg/store"
)

// diagnoseSampleLines is how many lines of each log file are checked.
const diagnoseSampleLines = 10

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [log-file]...",
		Short: "Diagnose common setup issues",
		Long: `Diagnose common setup issues.

This command checks:
- Config file syntax and structure (--config)
- Cache backend reachability and the cached session
- Webhook settings
- Log files given as arguments, and whether their lines are recognised

Example:
  forensilog diagnose --config forensilog.yaml
  forensilog diagnose -v /var/log/nginx/access.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runDiagnose(commandContext(cmd), configPath(cmd), args, opts)
			printDiagnostics(cmd.OutOrStdout(), results, opts)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, configPath string, logFiles []string, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	// 1. Check config file existence
	if configPath != "" {
		result := checkConfigExists(configPath)
		results = append(results, result)
		if result.Status == "error" {
			return results
		}
	}

	// 2. Parse config file
	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == "error" {
		return results
	}

	// 3. Check cache backend and contents
	results = append(results, checkCache(ctx, cfg)...)

	// 4. Check webhooks configuration
	results = append(results, checkWebhooks(cfg, opts)...)

	// 5. Check log files
	for _, path := range logFiles {
		results = append(results, checkLogFile(ctx, path, opts))
	}

	return results
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Omit --config to run with defaults",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	if path == "" {
		result.Message = "No config file given, using defaults"
	} else {
		result.Message = "Config file parsed successfully"
	}
	result.Details = []string{
		fmt.Sprintf("Cache: %s", describeCache(cfg.Cache)),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

func checkCache(ctx context.Context, cfg *config.Config) []DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Cache Backend: %s", cfg.Cache.Backend),
	}

	if cfg.Cache.Backend == config.CacheBackendNone {
		result.Status = "warning"
		result.Message = "Caching disabled; show and export without a file will not work"
		return []DiagnosticResult{result}
	}
	if cfg.Cache.Backend == config.CacheBackendMemory {
		result.Status = "warning"
		result.Message = "Memory cache does not persist between runs"
		return []DiagnosticResult{result}
	}

	s, err := openStore(ctx, cfg.Cache)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot open cache: %v", err)
		if cfg.Cache.Backend == config.CacheBackendRedis {
			result.Suggests = []string{"Check redis_url and that Redis is running"}
		} else {
			result.Suggests = []string{"Check the cache path is writable"}
		}
		return []DiagnosticResult{result}
	}
	defer s.Close()

	// Round-trip a probe key
	probe := cfg.Cache.Namespace + ":probe"
	if err := s.Set(ctx, probe, []byte("ok")); err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cache is not writable: %v", err)
		return []DiagnosticResult{result}
	}
	_ = s.Delete(ctx, probe)

	result.Status = "ok"
	result.Message = "Cache is reachable and writable"
	if limit := s.MaxValueSize(); limit > 0 {
		result.Details = []string{fmt.Sprintf("Per-key limit: %d bytes", limit)}
	}

	cached := DiagnosticResult{Check: "Cached Session"}
	sess, found, err := store.NewCache(s, store.WithNamespace(cfg.Cache.Namespace)).Load(ctx)
	switch {
	case err != nil:
		cached.Status = "warning"
		cached.Message = fmt.Sprintf("Cached session is unreadable: %v", err)
		cached.Suggests = []string{"Run 'forensilog cache clear' and analyze again"}
	case !found:
		cached.Status = "ok"
		cached.Message = "Nothing cached yet"
	default:
		cached.Status = "ok"
		cached.Message = fmt.Sprintf("%s, %d records, captured %s",
			sess.Source, len(sess.Records), sess.CapturedAt.Local().Format(time.RFC3339))
	}

	return []DiagnosticResult{result, cached}
}

func checkLogFile(ctx context.Context, path string, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Log File: %s", path),
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = "File does not exist"
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}

	lines, err := parser.ReadFile(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot read file: %v", err)
		return result
	}
	if len(lines) == 0 {
		result.Status = "warning"
		result.Message = "File has no log lines"
		return result
	}

	sample := lines
	if len(sample) > diagnoseSampleLines {
		sample = sample[:diagnoseSampleLines]
	}
	records := parser.ParseLines(sample)
	cov := parser.MeasureCoverage(records)
	matched := cov.Fields[parser.FieldTimestamp]

	var sampleFail string
	for i := range records {
		if !records[i].HasTimestamp() {
			sampleFail = records[i].Raw
			break
		}
	}

	switch {
	case matched == 0:
		result.Status = "warning"
		result.Message = "No timestamps recognised in sample lines"
		result.Suggests = []string{
			"Time range will be empty for this file",
			"Run 'forensilog coverage " + path + "' for a full breakdown",
		}
	case matched < len(records)/2:
		result.Status = "warning"
		result.Message = fmt.Sprintf("Timestamps recognised in only %d/%d sample lines", matched, len(records))
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("Timestamps recognised in %d/%d sample lines", matched, len(records))
	}

	if sampleFail != "" && (opts.Verbose || result.Status != "ok") {
		result.Details = []string{
			"Sample line without a timestamp:",
			truncate(sampleFail, 80),
		}
	}

	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== forensilog Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nSetup is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nSetup looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		// Webhooks are optional, just note they're not configured
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check:  fmt.Sprintf("Webhook: %s", name),
			Status: "ok",
		}
		result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)

		// An unset variable expands to an empty token
		if wh.Token == "" {
			result.Details = append(result.Details, "Token: none")
		} else {
			result.Details = append(result.Details, "Token: configured")
		}
		result.Details = append(result.Details, fmt.Sprintf("Timeout: %s", wh.Timeout))

		if wh.Trigger == config.WebhookTriggerNever {
			result.Status = "warning"
			result.Message = "Trigger is never; this webhook is disabled"
		}

		results = append(results, result)

		// Optionally test webhook connectivity
		if opts.Verbose {
			conn := checkWebhookConnectivity(wh)
			conn.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, conn)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// Just do a HEAD request to check if the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
