package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCacheCommand creates the cache command group.
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cached session",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the cached session",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	})

	return cmd
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	rt, err := newEnv(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.requireCache(); err != nil {
		return err
	}

	if err := rt.cache.Clear(commandContext(cmd)); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%s)\n", rt.cfg.Cache.Backend)
	return nil
}
