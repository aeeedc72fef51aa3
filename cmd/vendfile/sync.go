// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vendfile/vendfile/internal/config"
	"github.com/vendfile/vendfile/internal/diag"
	"github.com/vendfile/vendfile/internal/engine"
	"github.com/vendfile/vendfile/internal/github"
	"github.com/vendfile/vendfile/internal/tui"
	"github.com/vendfile/vendfile/pkg/vendfile"
)

// syncParams bundles the dependencies and flags for the sync command,
// enabling the core logic in runSync to be tested without a real Cobra
// command or live API calls.
type syncParams struct {
	stdout       io.Writer
	stderr       io.Writer
	manifestPath string
	cfg          *config.Config
	token        string
	logger       *log.Logger
	upgrade      engine.UpgradeSelection
	progress     bool
}

// newSyncCommand creates the `vendfile sync` command, which resolves every
// declared dependency and pins what it fetched.
func newSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch declared dependencies and pin their versions",
		Long: `Fetch the dependencies declared in the Vendfile and pin the remote
version of everything fetched in the lock section.

Dependencies that already have a pin are requested conditionally: an
unchanged remote short-circuits with "not modified" and the local file
is left untouched. Use 'vendfile upgrade' to discard pins and re-fetch.

Individual fetch failures are logged and reported in the summary; they
do not fail the run. The failed file simply does not update this run.`,
		Example: `  # Fetch everything that has no pin yet
  vendfile sync

  # Watch progress live
  vendfile sync --progress

  # Use a different manifest
  vendfile sync --file ./deps/Vendfile`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			manifestPath, _ := cmd.Flags().GetString("file")
			progress, _ := cmd.Flags().GetBool("progress")

			p := syncParams{
				stdout:       cmd.OutOrStdout(),
				stderr:       cmd.ErrOrStderr(),
				manifestPath: manifestPath,
				cfg:          cfg,
				token:        os.Getenv("GITHUB_TOKEN"),
				logger:       newRunLogger(),
				progress:     progress || cfg.Progress,
			}

			if err := runSync(p); err != nil {
				fmt.Fprintln(p.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", vendfile.DefaultName, "path to the Vendfile")
	cmd.Flags().Bool("progress", false, "show live per-dependency progress")

	return cmd
}

// runSync is the core sync logic, separated from Cobra for testability.
//
// Flow:
//  1. Load the Vendfile and build one unit per declaration.
//  2. Build the run state (HTTP client, repository client, lock table).
//  3. Start the scheduler: validate upgrade targets, invalidate pins, prune
//     stale pins, seed every unit. Configuration errors abort here, before
//     any network activity.
//  4. Drive passes until done, either from a plain tick loop or from the
//     bubbletea progress view.
//  5. Print the per-dependency summary. The lock section was persisted by
//     the scheduler if anything changed.
func runSync(p syncParams) error {
	mf, err := vendfile.Load(p.manifestPath)
	if err != nil {
		return diag.NewErrorContext().
			WithOperation("load Vendfile").
			WithResource(p.manifestPath).
			WithSuggestion("Run 'vendfile init' to create a starter Vendfile").
			WithSuggestion("Check the declaration syntax with 'vendfile docs'").
			Wrap(err).
			BuildError()
	}

	units := mf.Units()
	keys := make([]string, len(units))
	for i, u := range units {
		keys[i] = u.Key()
	}

	ghOpts := []github.ClientOption{
		github.WithBaseURL(p.cfg.APIBase),
		github.WithUserAgent(p.cfg.UserAgent),
	}
	if p.token != "" {
		ghOpts = append(ghOpts, github.WithToken(p.token))
	}

	run := engine.NewRun(
		&http.Client{Timeout: p.cfg.HTTPTimeout},
		github.NewClient(ghOpts...),
		mf.Lock,
		p.logger,
	)

	sched := engine.NewScheduler(run, func(vt *engine.VersionTable) error {
		mf.Lock = vt
		return mf.Save()
	})
	sched.Register(units...)

	if err := sched.Start(p.upgrade); err != nil {
		if errors.Is(err, engine.ErrUnknownUpgradeTarget) {
			return diag.NewErrorContext().
				WithOperation("select upgrade targets").
				WithResource(p.manifestPath).
				WithSuggestion("Run 'vendfile status' to list the declared dependency keys").
				Wrap(err).
				BuildError()
		}
		return err
	}

	if err := drive(sched, run, keys, p); err != nil {
		return err
	}

	renderSummary(p.stdout, run, keys)
	return nil
}

// drive runs scheduler passes to completion through one of the two hosts.
func drive(sched *engine.Scheduler, run *engine.Run, keys []string, p syncParams) error {
	if p.progress {
		model := tui.NewProgress(sched, run, keys, p.cfg.TickInterval)
		if _, err := tea.NewProgram(model, tea.WithOutput(p.stderr)).Run(); err != nil {
			return fmt.Errorf("progress view: %w", err)
		}
		return model.Err()
	}

	for {
		done, err := sched.Pass()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		time.Sleep(p.cfg.TickInterval)
	}
}

// newRunLogger builds the structured logger the engine reports events through.
func newRunLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "vendfile",
	})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// renderSummary prints one outcome line per dependency, declaration order.
func renderSummary(w io.Writer, run *engine.Run, keys []string) {
	for _, key := range keys {
		outcome, ok := run.Outcome(key)
		if !ok {
			fmt.Fprintf(w, "%s %s\n", VerboseStyle.Render("-"), KeyStyle.Render(key))
			continue
		}

		var marker string
		switch outcome {
		case engine.OutcomeFetched:
			marker = SuccessStyle.Render("✓")
		case engine.OutcomeUnchanged:
			marker = VerboseStyle.Render("=")
		case engine.OutcomeUpgradable:
			marker = WarningStyle.Render("↑")
		case engine.OutcomeFailed:
			marker = ErrorStyle.Render("✗")
		}
		fmt.Fprintf(w, "%s %s %s\n", marker, KeyStyle.Render(key), SubtitleStyle.Render(outcome.String()))
	}
}
