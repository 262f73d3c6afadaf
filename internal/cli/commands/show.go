package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/forensilog/pkg/config"
	"github.com/ccollicutt/forensilog/pkg/session"
)

var (
	errCacheDisabled    = errors.New("cache is disabled (cache.backend: none)")
	errCacheUnavailable = errors.New("cache backend is unavailable")
	errNothingCached    = errors.New("no cached session; run analyze first")
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the cached session",
		Long: `Render the session saved by the last analyze run without reading the
log file again. Accepts the same display flags as analyze.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts)
		},
	}

	addRenderFlags(cmd, opts)

	return cmd
}

func runShow(cmd *cobra.Command, opts *RenderOptions) error {
	ctx := commandContext(cmd)

	rt, err := newEnv(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	formatter, err := createFormatter(opts, rt.cfg)
	if err != nil {
		return err
	}

	s, err := rt.loadCached(cmd)
	if err != nil {
		return err
	}

	// Keep JSON output parseable
	notice := cmd.OutOrStdout()
	if opts.Output == "json" {
		notice = cmd.ErrOrStderr()
	}
	if !opts.Quiet {
		printLoadedFrom(notice, s)
	}

	if err := formatter.Format(ctx, s, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}

// loadCached returns the cached session or an error explaining why there is
// none.
func (rt *env) loadCached(cmd *cobra.Command) (*session.Session, error) {
	if err := rt.requireCache(); err != nil {
		return nil, err
	}

	s, found, err := rt.cache.Load(commandContext(cmd))
	if err != nil {
		rt.logger.Warn("cached session unreadable", "error", err)
		return nil, fmt.Errorf("loading cached session: %w", err)
	}
	if !found {
		return nil, errNothingCached
	}
	return s, nil
}

// requireCache explains why no cache is open: disabled by config, or a
// configured backend that could not be reached.
func (rt *env) requireCache() error {
	if rt.cache != nil {
		return nil
	}
	if rt.cfg.Cache.Backend == config.CacheBackendNone {
		return errCacheDisabled
	}
	return fmt.Errorf("%w (%s)", errCacheUnavailable, rt.cfg.Cache.Backend)
}

func printLoadedFrom(w io.Writer, s *session.Session) {
	fmt.Fprintf(w, "Loaded from cache: %s (%s)\n", s.Source, s.CapturedAt.Local().Format("2006-01-02 15:04:05"))
}
