// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vendfile/vendfile/internal/engine"
	"github.com/vendfile/vendfile/pkg/vendfile"
)

// newUpgradeCommand creates the `vendfile upgrade` command: a sync that first
// discards the named pins (or all of them with --all), forcing those
// dependencies to be fetched unconditionally.
func newUpgradeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade [key...]",
		Short: "Discard pins and re-fetch dependencies",
		Long: `Discard the recorded version pins for the named dependencies and
re-fetch them. Sibling pins are untouched and stay conditional.

A dependency's key is its source URL for [[url]] declarations and
repo:<owner>/<repo>/<path> for [[github]] declarations; 'vendfile status'
lists them. Naming a key that is not declared aborts before any network
activity.`,
		Example: `  # Re-fetch one dependency
  vendfile upgrade https://example.com/a.txt

  # Re-fetch a repository path
  vendfile upgrade repo:someowner/somerepo/lib

  # Discard every pin and re-fetch everything
  vendfile upgrade --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			all, _ := cmd.Flags().GetBool("all")
			manifestPath, _ := cmd.Flags().GetString("file")
			progress, _ := cmd.Flags().GetBool("progress")

			if !all && len(args) == 0 {
				return fmt.Errorf("name at least one dependency key, or pass --all")
			}

			p := syncParams{
				stdout:       cmd.OutOrStdout(),
				stderr:       cmd.ErrOrStderr(),
				manifestPath: manifestPath,
				cfg:          cfg,
				token:        os.Getenv("GITHUB_TOKEN"),
				logger:       newRunLogger(),
				upgrade:      engine.UpgradeSelection{All: all, Keys: args},
				progress:     progress || cfg.Progress,
			}

			if err := runSync(p); err != nil {
				fmt.Fprintln(p.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "discard every pin")
	cmd.Flags().StringP("file", "f", vendfile.DefaultName, "path to the Vendfile")
	cmd.Flags().Bool("progress", false, "show live per-dependency progress")

	return cmd
}
