package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/forensilog/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a forensilog configuration file without running analysis.

Checks:
  - YAML syntax
  - Cache backend and its settings
  - Report, analysis and log settings
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Report what we found
	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Cache:    %s\n", describeCache(cfg.Cache))
	fmt.Fprintf(w, "  Report:   top %d addresses, %d suspicious entries\n", cfg.Report.TopAddresses, cfg.Report.SuspiciousLimit)
	fmt.Fprintf(w, "  Workers:  %d\n", cfg.Analysis.Workers)
	fmt.Fprintf(w, "  Logging:  %s (%s)\n", cfg.Log.Level, cfg.Log.Format)
	fmt.Fprintf(w, "  Webhooks: %d\n", len(cfg.Webhooks))

	for i, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, wh.Trigger, name)
	}

	return nil
}

func describeCache(c config.CacheConfig) string {
	switch c.Backend {
	case config.CacheBackendSQLite:
		return fmt.Sprintf("sqlite %s", c.Path)
	case config.CacheBackendRedis:
		return fmt.Sprintf("redis (namespace %s, ttl %s)", c.Namespace, c.TTL)
	default:
		return string(c.Backend)
	}
}
