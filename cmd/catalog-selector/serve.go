package main

import (
	"errors"
	"os"

	"github.com/Sternrassler/catalog-selector/internal/server"
	"github.com/Sternrassler/catalog-selector/pkg/coordinator"
	"github.com/Sternrassler/catalog-selector/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a selection session over HTTP",
		Long: `Starts an HTTP API for one selection session. The first page is loaded
on startup; clients navigate, toggle rows and run select-first-N through
the /api endpoints. Prometheus metrics are served on /metrics.`,
		Example: `  # Start on the default address :8080
  catalog-selector serve

  # Custom address with the Redis cache enabled
  catalog-selector serve --addr :9000 --redis --redis-addr localhost:6379`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg

			logCfg := cfg.LoggingConfig()
			if cfg.Log.File != "" {
				_, closeLog, err := logging.SetupFile(logCfg, cfg.Log.File)
				if err != nil {
					return err
				}
				defer closeLog()
			} else {
				logCfg.Output = os.Stderr
				logging.Setup(logCfg)
			}

			ctx := cmd.Context()
			sess, err := newSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			srv := server.New(sess.coord, sess.store, sess.selector, server.Options{
				Redis:          sess.redis,
				RequestTimeout: cfg.Catalog.Timeout,
			})

			log.Info().
				Str("base_url", cfg.Catalog.BaseURL).
				Str("user_agent", cfg.Catalog.UserAgent).
				Bool("redis", sess.redis != nil).
				Msg("Catalog selector configured")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(gctx, cfg.Server.Addr)
			})
			g.Go(func() error {
				// a failed first page leaves an empty view; the API can retry it
				if err := sess.coord.GoToPage(gctx, 1); err != nil && !errors.Is(err, coordinator.ErrSuperseded) {
					log.Warn().Err(err).Msg("Initial page load failed")
				}
				return nil
			})

			return g.Wait()
		},
	}

	cmd.Flags().String("addr", "", "Address to listen on (default :8080)")

	return cmd
}
