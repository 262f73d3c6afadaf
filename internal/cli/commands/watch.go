package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/forensilog/pkg/output"
)

// DefaultDebounce coalesces bursts of writes into one re-analysis.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
	NoCache  bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <log-file>",
		Short: "Re-analyze a log file whenever it changes",
		Long: `Watch a log file and print a one-line summary each time it changes.

Every change re-reads the whole file and replaces the session, so the
summary always covers the complete file. The cached session is updated
unless --no-cache is set. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", DefaultDebounce, "Wait this long after a change before re-analyzing")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Do not replace the cached session")

	return cmd
}

func runWatch(cmd *cobra.Command, path string, opts *WatchOptions) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newEnv(cmd, !opts.NoCache)
	if err != nil {
		return err
	}
	defer rt.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	// Watch the directory so rotation and editor renames are seen.
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	refresh := func() error {
		s, err := loadSession(ctx, []string{abs}, rt.cfg)
		if err != nil {
			return err
		}
		if rt.cache != nil {
			if err := rt.cache.Save(ctx, s); err != nil {
				rt.logger.Warn("session not cached", "error", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", time.Now().Format("15:04:05"), output.NewSummary(s))
		return nil
	}

	// The file must exist when watching starts.
	if err := refresh(); err != nil {
		return err
	}
	rt.logger.Info("watching", "path", abs)

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
				rt.logger.Debug("log changed", "path", abs, "op", ev.Op.String())
				timer.Reset(debounce)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				rt.logger.Info("log removed, waiting for it to reappear", "path", abs)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			rt.logger.Warn("watcher error", "error", err)
		case <-timer.C:
			if err := refresh(); err != nil {
				rt.logger.Warn("re-analysis failed", "path", abs, "error", err)
			}
		}
	}
}
