package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bethropolis/tgrep/internal/app"
	"github.com/bethropolis/tgrep/internal/config"
	"github.com/bethropolis/tgrep/internal/filter"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the tgrep command. The search's exit code is
// stored in exitCode.
func NewRootCommand(exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tgrep [flags] PATTERN [PATH...]",
		Short: "Search file trees for lines matching a pattern",
		Long: `tgrep recursively searches the given paths (default: the current
directory) for lines matching PATTERN.

Files and directories excluded by .gitignore rules, hidden files and
binary files are skipped unless told otherwise. Settings can also be
read from .tgrep.toml, .tgrep.yaml or .tgrep.json.`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list, _ := cmd.Flags().GetBool("type-list"); list {
				for _, name := range filter.Types() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			cfg, err := config.Resolve(cmd.Flags(), args)
			if err != nil {
				return err
			}
			a := app.New(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			a.Input = cmd.InOrStdin()
			*exitCode = a.Run(cmd.Context())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	config.BindFlags(flags, config.Default())
	flags.Bool("type-list", false, "List the known file types and exit")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w (see '%s --help')", err, strings.Fields(c.Use)[0])
	})
	return cmd
}
