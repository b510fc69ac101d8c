package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/narayan-iyengar/scope/internal/api"
	"github.com/narayan-iyengar/scope/pkg/engine"
	"github.com/narayan-iyengar/scope/pkg/layout/force"
)

// serveCommand creates the HTTP API server command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout engine behind an HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			layoutCache, err := buildCache(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init cache: %w", err)
			}
			defer layoutCache.Close()

			sessions, err := buildSessions(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init sessions: %w", err)
			}
			defer sessions.Close(context.Background())

			eng := engine.New(force.Layout,
				engine.WithLogger(logger),
				engine.WithCache(layoutCache),
				engine.WithCacheTTL(cfg.Cache.TTL.Std()),
				engine.WithSizeLimits(cfg.Engine.NodeSize),
				engine.WithDensity(cfg.Engine.Density))

			server := api.NewServer(eng, sessions, cfg.Session.TTL.Std(), logger)
			httpServer := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Server.Addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				logger.Info("shutting down")
				return httpServer.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
