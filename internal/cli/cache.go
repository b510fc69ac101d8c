package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/narayan-iyengar/scope/pkg/cache"
)

// cacheCommand creates the layout cache management command. It operates on
// the on-disk backend regardless of the configured one: that is the cache a
// user can inspect and reclaim space from.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear cached layouts",
	}

	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

// openFileCache opens the on-disk layout cache at the configured directory.
func (c *CLI) openFileCache() (*cache.FileCache, string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, "", err
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("get cache dir: %w", err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, "", err
	}
	return fc, dir, nil
}

// cacheInfoCommand creates the "cache info" subcommand: how many layouts
// are stored, how much disk they use, and how many have expired.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show stored layouts and disk usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, dir, err := c.openFileCache()
			if err != nil {
				return err
			}

			entries, err := fc.Entries(cmd.Context())
			if err != nil {
				return err
			}

			var layouts, expired int
			var totalSize int64
			var newest time.Time
			for _, e := range entries {
				if !cache.IsLayoutKey(e.Key) {
					continue
				}
				layouts++
				totalSize += e.Size
				if e.Expired {
					expired++
				}
				if e.StoredAt.After(newest) {
					newest = e.StoredAt
				}
			}

			printInfo("Layout cache: %s", dir)
			printDetail("Layouts: %d (%s)", layouts, formatBytes(totalSize))
			if expired > 0 {
				printDetail("Expired: %d (run `cache clear --expired` to prune)", expired)
			}
			if !newest.IsZero() {
				printDetail("Newest: %s", newest.Format(time.RFC3339))
			}
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand. By default every
// stored layout is removed; --expired prunes only entries past their TTL.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, dir, err := c.openFileCache()
			if err != nil {
				return err
			}

			if expiredOnly {
				removed, err := fc.Prune(cmd.Context())
				if err != nil {
					return err
				}
				printSuccess("Pruned %d expired layouts", removed)
				return nil
			}

			entries, err := fc.Entries(cmd.Context())
			if err != nil {
				return err
			}
			removed := 0
			for _, e := range entries {
				if !cache.IsLayoutKey(e.Key) {
					continue
				}
				if err := fc.Delete(cmd.Context(), e.Key); err != nil {
					return err
				}
				removed++
			}
			if removed == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached layouts", removed)
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "remove only entries past their TTL")
	return cmd
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
