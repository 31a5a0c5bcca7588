package main

import (
	"fmt"

	"github.com/Sternrassler/catalog-selector/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions carries the resolved configuration to subcommands.
type rootOptions struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "catalog-selector",
		Short: "Browse a paginated catalog and build a selection across pages",
		Long: `catalog-selector browses a remotely paginated collection (by default the
Art Institute of Chicago artworks API) and keeps a selection of records that
survives page changes. "Select first N" walks the remote pages from the start
until N records are selected.

Settings come from flags, CATSEL_* environment variables, an optional
config.yaml and a .env file in the working directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(opts.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	flags.String("base-url", "", "Catalog collection endpoint")
	flags.String("user-agent", "", "User-Agent sent to the catalog API")
	flags.Int("page-size", 0, "Rows per view page")
	flags.Int("max-pages", 0, "Page cap for select-first-N (0 = unlimited)")
	flags.Bool("redis", false, "Enable the Redis response cache and shared rate limit")
	flags.String("redis-addr", "", "Redis address")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("log-pretty", false, "Human-readable log output")
	flags.String("log-file", "", "Write logs to this file")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newBrowseCmd(opts))

	return cmd
}
