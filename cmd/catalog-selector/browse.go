package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Sternrassler/catalog-selector/internal/tui"
	"github.com/Sternrassler/catalog-selector/pkg/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errNoTerminal is returned by browse when stdin or stdout is redirected.
var errNoTerminal = errors.New("browse needs an interactive terminal; use serve for scripted access")

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	var printIDs bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog in the terminal",
		Long: `Opens a terminal table of the catalog. Space toggles the row under the
cursor, n/p change pages and s selects the first N records across pages.
Logs go to a file so they never draw over the table.`,
		Example: `  catalog-selector browse
  catalog-selector browse --print-ids`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg

			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return errNoTerminal
			}

			logPath := cfg.Log.File
			if logPath == "" {
				logPath = filepath.Join(os.TempDir(), "catalog-selector.log")
			}
			_, closeLog, err := logging.SetupFile(cfg.LoggingConfig(), logPath)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx := cmd.Context()
			sess, err := newSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := tui.Run(ctx, sess.coord, sess.store, sess.selector); err != nil {
				return err
			}

			if printIDs {
				ids := sess.store.IDs()
				parts := make([]string, len(ids))
				for i, id := range ids {
					parts[i] = strconv.FormatInt(id, 10)
				}
				if len(parts) > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, "\n"))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&printIDs, "print-ids", false, "Print the selected ids on exit")

	return cmd
}
