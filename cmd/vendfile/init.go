// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vendfile/vendfile/pkg/vendfile"
)

// starterVendfile is the scaffold written by `vendfile init`.
const starterVendfile = `# Vendfile - remote file dependencies for this project.
# Run 'vendfile sync' to fetch everything and pin the versions below
# the sentinel line. See 'vendfile docs' for the full reference.

# A plain URL, written verbatim to dest:
#
# [[url]]
# source = "https://example.com/a.txt"
# dest   = "assets/a.txt"

# A file or directory inside a GitHub repository:
#
# [[github]]
# owner = "someowner"
# repo  = "somerepo"
# path  = "lib"
# ref   = "main"          # optional
# dest  = "vendor/lib"    # optional
`

var (
	initForce bool

	// initCmd creates a new Vendfile
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a starter Vendfile in the current directory",
		Long: `Create a starter Vendfile in the current directory with commented
example declarations for both dependency kinds.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing Vendfile")
}

func runInit(cmd *cobra.Command, args []string) error {
	filename := vendfile.DefaultName
	if len(args) > 0 {
		filename = args[0]
	}

	if _, err := os.Stat(filename); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
	}

	if err := os.WriteFile(filename, []byte(starterVendfile), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(out, "  1. Declare your dependencies in the Vendfile")
	fmt.Fprintln(out, "  2. Run 'vendfile sync' to fetch and pin them")

	return nil
}
