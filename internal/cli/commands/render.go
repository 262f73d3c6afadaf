package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/forensilog/pkg/config"
	"github.com/ccollicutt/forensilog/pkg/output"
	"github.com/ccollicutt/forensilog/pkg/session"
)

// RenderOptions holds the display flags shared by analyze and show.
type RenderOptions struct {
	Output  string
	Search  string
	Level   string
	Records bool
	Quiet   bool
}

func addRenderFlags(cmd *cobra.Command, opts *RenderOptions) {
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "List only records containing this text (case-insensitive)")
	cmd.Flags().StringVar(&opts.Level, "level", session.AllLevels, "List only records at this level")
	cmd.Flags().BoolVar(&opts.Records, "records", false, "Include the record list")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
}

func createFormatter(opts *RenderOptions, cfg *config.Config) (output.Formatter, error) {
	formatOpts := output.FormatOptions{
		Quiet:   opts.Quiet,
		Records: opts.Records || opts.Search != "" || (opts.Level != "" && opts.Level != session.AllLevels),
		Query: session.Query{
			Search: opts.Search,
			Level:  opts.Level,
		},
	}
	if cfg != nil {
		formatOpts.TopN = cfg.Report.TopAddresses
		formatOpts.SuspiciousLimit = cfg.Report.SuspiciousLimit
	}

	f, ok := output.New(opts.Output, formatOpts)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
	return f, nil
}
