// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for vendfile.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/vendfile/vendfile/internal/config"
	"github.com/vendfile/vendfile/internal/diag"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// cfg is the loaded configuration, populated by initRootConfig.
	cfg = config.DefaultConfig()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "vendfile",
		Short: "Pin and fetch remote file dependencies",
		Long: TitleStyle.Render("vendfile") + SubtitleStyle.Render(" - Pin and fetch remote file dependencies") + `

vendfile resolves the remote file dependencies declared in a Vendfile —
plain URLs and paths inside GitHub repositories — into local files, and
pins the exact remote version of everything it fetched in the lock
section at the bottom of the same Vendfile. Pinned dependencies are only
re-fetched when you ask for an upgrade.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'vendfile init' to create a starter Vendfile
  2. Declare your dependencies in it
  3. Run 'vendfile sync' to fetch and pin them

` + SubtitleStyle.Render("Examples:") + `
  vendfile sync                 Fetch everything that has no pin yet
  vendfile status               Show declared dependencies and their pins
  vendfile upgrade --all        Discard every pin and re-fetch
  vendfile upgrade <key>        Re-fetch one dependency`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/vendfile/config.toml)")

	// Add subcommands
	rootCmd.AddCommand(newSyncCommand())
	rootCmd.AddCommand(newUpgradeCommand())
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(docsCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in the config file if one exists.
func initRootConfig() {
	loaded, err := config.LoadWithOptions(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return
	}
	cfg = loaded
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// carry their suggestions; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *diag.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
