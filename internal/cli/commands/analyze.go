package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/forensilog/pkg/config"
	"github.com/ccollicutt/forensilog/pkg/parser"
	"github.com/ccollicutt/forensilog/pkg/session"
	"github.com/ccollicutt/forensilog/pkg/webhook"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	RenderOptions

	NoCache bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <log-file>...",
		Short: "Analyze a log file for forensic indicators",
		Long: `Parse a log file and report what it contains.

Reports:
  - Entry counts by level, source address and actor
  - Error entries (ERROR, CRITICAL, FATAL)
  - Suspicious entries (failed, denied, injection, ...)
  - The time range covered

Several files or glob patterns may be given; their lines are analyzed as one
batch in file name order. The result replaces the cached session used by
show and export.

Exit codes:
  0 - No suspicious activity detected
  1 - Suspicious activity detected
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	addRenderFlags(cmd, &opts.RenderOptions)
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Do not replace the cached session")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnSuspicious), "When to fire webhook (on_suspicious|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	ctx := commandContext(cmd)

	rt, err := newEnv(cmd, !opts.NoCache)
	if err != nil {
		return err
	}
	defer rt.Close()

	formatter, err := createFormatter(&opts.RenderOptions, rt.cfg)
	if err != nil {
		return err
	}

	s, err := loadSession(ctx, args, rt.cfg)
	if err != nil {
		return err
	}
	rt.logger.Debug("analyzed", "source", s.Source, "records", len(s.Records), "workers", rt.cfg.Analysis.Workers)

	// Output report
	if err := formatter.Format(ctx, s, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Cache errors are logged but don't fail analysis
	if rt.cache != nil {
		if err := rt.cache.Save(ctx, s); err != nil {
			rt.logger.Warn("session not cached", "error", err)
		} else {
			rt.logger.Debug("session cached", "id", s.ID, "backend", rt.cfg.Cache.Backend)
		}
	}

	// Send webhooks (errors logged but don't fail analysis)
	webhook.NewClient().Dispatch(ctx, s, collectWebhooks(rt.cfg, opts), rt.cfg.Report.SuspiciousLimit, rt.logger)

	// Set exit code based on results
	if s.Report.HasSuspicious() {
		ExitCode = 1
	}

	return nil
}

// loadSession reads every file matched by args and analyzes the lines as
// one batch. Reading stops when ctx is cancelled.
func loadSession(ctx context.Context, args []string, cfg *config.Config) (*session.Session, error) {
	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return nil, fmt.Errorf("expanding log files: %w", err)
	}

	var lines []string
	names := make([]string, 0, len(files))
	for _, file := range files {
		fileLines, err := parser.ReadFile(ctx, file)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fileLines...)
		names = append(names, filepath.Base(file))
	}

	return session.New(strings.Join(names, ", "), lines, session.WithWorkers(cfg.Analysis.Workers)), nil
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []webhook.Target {
	targets := make([]webhook.Target, 0, len(cfg.Webhooks)+1)

	// Add config file webhooks
	for _, wh := range cfg.Webhooks {
		targets = append(targets, webhook.Target{
			Name:    wh.Name,
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
			Trigger: webhook.Trigger(wh.Trigger),
		})
	}

	// Add CLI webhook if specified
	if opts.WebhookURL != "" {
		trigger := webhook.Trigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = webhook.TriggerOnSuspicious
		}

		targets = append(targets, webhook.Target{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return targets
}
