package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/forensilog/pkg/parser"
)

// CoverageOptions holds command-line options for the coverage command.
type CoverageOptions struct {
	Output string
}

// NewCoverageCommand creates the coverage command.
func NewCoverageCommand() *cobra.Command {
	opts := &CoverageOptions{}

	cmd := &cobra.Command{
		Use:   "coverage <log-file>...",
		Short: "Show how much of a log the field extractors recognise",
		Long: `Report, for each extracted field, how many lines carried a value, and
which timestamp patterns matched. Useful before trusting an analysis of an
unfamiliar log format.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")

	return cmd
}

func runCoverage(cmd *cobra.Command, args []string, opts *CoverageOptions) error {
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	rt, err := newEnv(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	s, err := loadSession(commandContext(cmd), args, rt.cfg)
	if err != nil {
		return err
	}

	cov := parser.MeasureCoverage(s.Records)

	if opts.Output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(cov)
	}

	outputCoverageText(cmd.OutOrStdout(), s.Source, cov)
	return nil
}

func outputCoverageText(w io.Writer, source string, cov *parser.Coverage) {
	fmt.Fprintf(w, "Coverage: %s (%d lines)\n\n", source, cov.Total)

	fmt.Fprintln(w, "Fields:")
	for _, field := range parser.FieldNames() {
		fmt.Fprintf(w, "  %-16s %6d  %5.1f%%\n", field, cov.Fields[field], cov.Ratio(field)*100)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Timestamp patterns:")
	matched := 0
	for _, p := range parser.TimestampPatterns() {
		n := cov.TimestampPatterns[p.Name]
		if n == 0 {
			continue
		}
		matched++
		fmt.Fprintf(w, "  %-22s %6d  %s\n", p.Name, n, p.PatternStr)
	}
	if matched == 0 {
		fmt.Fprintln(w, "  (none matched)")
	}
}
