// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	_ "embed"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vendfile/vendfile/internal/tui"
)

//go:embed docs.md
var manualText string

// docsCmd renders the embedded manifest reference in the terminal.
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show the Vendfile reference",
	Long:  `Render the Vendfile manifest reference in the terminal.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		rendered, err := tui.RenderMarkdown(manualText, 100)
		if err != nil {
			return fmt.Errorf("rendering docs: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}
