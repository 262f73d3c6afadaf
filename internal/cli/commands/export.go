package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/forensilog/pkg/output"
	"github.com/ccollicutt/forensilog/pkg/session"
)

// ExportOptions holds command-line options for the export command.
type ExportOptions struct {
	Out string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export [log-file]...",
		Short: "Write a plain-text forensic report",
		Long: `Write the fixed-layout forensic report for a log file, or for the cached
session when no file is given.

The report is written to forensic_report_<unix-millis>.txt in the current
directory unless --out is set. Use --out - to write to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file (default forensic_report_<unix-millis>.txt, - for stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *ExportOptions) error {
	ctx := commandContext(cmd)

	rt, err := newEnv(cmd, len(args) == 0)
	if err != nil {
		return err
	}
	defer rt.Close()

	var s *session.Session
	if len(args) > 0 {
		s, err = loadSession(ctx, args, rt.cfg)
	} else {
		s, err = rt.loadCached(cmd)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	formatter := output.NewExportFormatter(now)

	if opts.Out == "-" {
		return formatter.Format(ctx, s, cmd.OutOrStdout())
	}

	path := opts.Out
	if path == "" {
		path = output.ExportFileName(now)
	}

	f, err := os.Create(path) // #nosec G304 -- user-provided output path is expected
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := formatter.Format(ctx, s, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	rt.logger.Debug("report exported", "path", path, "records", len(s.Records))
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
	return nil
}
