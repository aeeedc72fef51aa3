// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vendfile/vendfile/internal/diag"
	"github.com/vendfile/vendfile/pkg/vendfile"
)

// statusCmd shows the declared dependencies and their pins, offline.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show declared dependencies and their pinned versions",
	Long: `Show every dependency declared in the Vendfile together with the
version tag pinned in the lock section, without touching the network.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true

		manifestPath, _ := cmd.Flags().GetString("file")
		if err := runStatus(cmd.OutOrStdout(), manifestPath); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
			return &ExitError{Code: 1, Err: err}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringP("file", "f", vendfile.DefaultName, "path to the Vendfile")
}

// runStatus prints one line per declared dependency with its pin state.
func runStatus(w io.Writer, manifestPath string) error {
	mf, err := vendfile.Load(manifestPath)
	if err != nil {
		return diag.NewErrorContext().
			WithOperation("load Vendfile").
			WithResource(manifestPath).
			WithSuggestion("Run 'vendfile init' to create a starter Vendfile").
			Wrap(err).
			BuildError()
	}

	units := mf.Units()
	if len(units) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("No dependencies declared."))
		return nil
	}

	for _, u := range units {
		key := u.Key()
		if tag, ok := mf.Lock.Get(key); ok {
			fmt.Fprintf(w, "%s %s %s\n", SuccessStyle.Render("●"), KeyStyle.Render(key), VerboseStyle.Render(tag))
		} else {
			fmt.Fprintf(w, "%s %s %s\n", VerboseStyle.Render("○"), KeyStyle.Render(key), SubtitleStyle.Render("(unpinned)"))
		}
	}
	return nil
}
