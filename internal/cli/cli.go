// Package cli implements the scope command-line interface.
//
// Commands:
//   - layout: compute a layout for a topology snapshot and export it
//   - serve: run the HTTP API around a long-lived engine
//   - view: interactive terminal viewer (pan, zoom, focus)
//   - cache: manage the on-disk layout cache
//
// All commands support --verbose (-v) for debug-level logging and --config
// for a TOML config file. Loggers are passed through context.Context.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/narayan-iyengar/scope/pkg/buildinfo"
	"github.com/narayan-iyengar/scope/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "scope"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Scope positions network-topology graphs",
		Long:         `Scope is the layout and viewport engine for interactive network-topology graphs: it computes stable node positions, fits the viewport to content, and arranges focused nodes with their neighbors on a ring.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to TOML config file")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// loadConfig resolves the effective configuration for a command.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// cacheDir returns the on-disk layout cache directory, creating nothing.
// Defaults to <user cache dir>/scope.
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}
