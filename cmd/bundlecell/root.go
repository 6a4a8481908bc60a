// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bundlecell/bundlecell/internal/issue"
	"github.com/bundlecell/bundlecell/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	var (
		verbose bool
		cfgFile string
	)

	rootCmd := &cobra.Command{
		Use:   "bundlecell",
		Short: "Inspect interned module compilation options",
		Long: TitleStyle.Render("bundlecell") + SubtitleStyle.Render(" - Inspect interned module compilation options") + `

bundlecell resolves a CUE configuration into a module options cell: the
feature toggles, preset environment and transform lists a compiler runs
with. Identical configurations resolve to the same cell.

` + SubtitleStyle.Render("Examples:") + `
  bundlecell config show         Show current configuration
  bundlecell options show        Show the resolved cell
  bundlecell options plan        Show the ordered transform plan
  bundlecell options compile x   Compile a file with the resolved options`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				app.LoadOptions.ConfigFilePath = types.FilesystemPath(cfgFile)
			}
			if !verbose {
				// The config file may turn verbose output on as well.
				if cfg, err := app.Config.Load(cmd.Context(), app.LoadOptions); err == nil {
					verbose = cfg.UI.Verbose
				}
			}
			if verbose {
				app.Logger.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/bundlecell/config.cue)")

	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newOptionsCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's status. It is called by
// main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err != nil {
		renderIssue(app.stderr, err, app.Logger.GetLevel() <= log.DebugLevel)
	}
	os.Exit(exitCode(err))
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors use their own Format; verbose mode shows the cause chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderIssue prints the catalog guidance linked to err, if any. Guidance is
// only shown in verbose mode.
func renderIssue(w io.Writer, err error, verbose bool) {
	var ae *issue.ActionableError
	if !verbose || !errors.As(err, &ae) {
		return
	}
	entry := ae.Issue()
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render("dark")
	if renderErr != nil {
		log.Warn("failed to render issue catalog entry", "issue", ae.IssueID, "error", renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}
