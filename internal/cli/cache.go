package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphypad/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer ch.Close()

			cleared, err := cache.Clear(cmd.Context(), ch)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if !cleared {
				printInfo("Nothing to clear for the %s backend", c.cacheBackendName(false))
				return nil
			}
			printSuccess("Cache cleared")
			printKeyValue("Backend", c.cacheBackendName(false))
			if fc, ok := ch.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Dir != "" {
				fmt.Fprintln(c.out, c.Config.Cache.Dir)
				return nil
			}
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}

// cacheBackendName reports the backend in effect.
func (c *CLI) cacheBackendName(noCache bool) string {
	if noCache || c.Config.Cache.Backend == "" {
		return cache.BackendNone
	}
	return c.Config.Cache.Backend
}
