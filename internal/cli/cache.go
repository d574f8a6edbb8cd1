package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shortword/pkg/cache"
	errs "github.com/matzehuels/shortword/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached bases, tables and solutions",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := c.openCache(ctx)
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				return errs.New(errs.ErrCodeUnsupported, "cache backend %T cannot be cleared", ch)
			}
			n, err := clearer.Clear(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo(c.Out, "Cache is empty")
				return nil
			}
			noun := "entries"
			if n == 1 {
				noun = "entry"
			}
			printSuccess(c.Out, "Cleared %d cached %s", n, noun)
			if fc, ok := ch.(*cache.FileCache); ok {
				printDetail(c.Out, "Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.noCache {
				fmt.Fprintln(c.Out, "none")
				return nil
			}
			loc, err := c.resolveCacheLocation()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Out, loc)
			return nil
		},
	}
}
